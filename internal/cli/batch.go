package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/aletheia/internal/pipeline"
	"github.com/ppiankov/aletheia/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check multiple records from a JSONL file in parallel",
	Long: `Batch fact-checks many answers concurrently:
- Read check records from a JSONL file (one JSON object per line)
- Each record carries an id, an answer, optional question, and reference documents
- Records are checked in parallel with a configurable worker count
- One JSON report per record lands in the output directory

Record format:
  {"id": "q1", "question": "...", "answer": "...", "reference_documents": ["...", "..."]}

Blank lines and lines starting with # are skipped; duplicate ids are dropped.

Example:
  aletheia batch records.jsonl
  aletheia batch records.jsonl --concurrency 4 --output-dir ./reports
  aletheia batch records.jsonl --split --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.batch_workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./aletheia-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Checking mode flags, shared with check
	batchCmd.Flags().BoolVar(&directBackend, "direct", false, "compare triplets by text match instead of asking the model")
	batchCmd.Flags().BoolVar(&splitRefs, "split", false, "check each reference segment separately and merge the verdicts")
	batchCmd.Flags().BoolVar(&inquiryMode, "inquiry", false, "let the model reason before its verdict listing")
	batchCmd.Flags().StringVar(&mergePolicy, "merge", "", "segment merge policy: or, and, majority")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model response cache")
	batchCmd.Flags().BoolVar(&logPrompts, "log-prompts", false, "log rendered prompts and raw model output at debug level")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	applyCheckFlags(cfg)
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	if err := configureLLM(cfg); err != nil {
		return err
	}
	if cfg.Model.LLM.Provider == "" {
		return fmt.Errorf("model.llm.provider is not configured (set it in the config file or pass --llm-provider)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Aletheia Batch Checking\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Provider:     %s/%s\n", cfg.Model.LLM.Provider, cfg.Model.LLM.GeneratorModel)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Create pipeline
	p, err := pipeline.NewPipeline(cfg, nil)
	if err != nil {
		return err
	}

	// Create batch processor
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Reading records from file...\n")
	records, err := worker.ReadRecordsFromFile(file)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d records\n", len(records))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Checking records with %d workers...\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "\n")

	results := processor.ProcessRecords(ctx, records)

	// Process results
	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Record.ID, result.Error)
			continue
		}

		jsonPath := filepath.Join(outputDir, sanitizeFilename(result.Record.ID)+".json")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", result.Record.ID, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (index: %d/100, %d/%d supported)\n",
			result.Record.ID, result.Report.Score.Index,
			result.Report.Score.Supported, result.Report.Score.Total)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d records\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d records failed", failureCount, len(results))
	}
	return nil
}

// sanitizeFilename maps a record id to a safe file name
func sanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "record"
	}
	return s
}
