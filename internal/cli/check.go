package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	checkAnswer     string
	checkAnswerFile string
	checkQuestion   string
	checkRefs       []string
	outJSON         string
	checkTimeout    time.Duration
	generateAnswer  bool
	directBackend   bool
	splitRefs       bool
	inquiryMode     bool
	mergePolicy     string
	noCache         bool
	logPrompts      bool
	insecureTLS     bool
	llmProvider     string
	llmModel        string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fact-check an answer against reference documents",
	Long: `Check reduces the answer and every reference document to knowledge
triplets, then asks the model whether each answer triplet is supported by
the reference triplets:
- Extract (subject, predicate, object) facts from the answer
- Segment references and extract facts from each segment
- Judge each answer fact against the reference facts
- Score support and emit diagnostic signals

References can be inline text, local files, or URLs.

Example:
  aletheia check --answer "The Eiffel Tower is in Berlin." --reference paris.txt
  aletheia check --answer-file answer.txt --reference https://en.wikipedia.org/wiki/Paris --json report.json
  aletheia check --question "Where is the Eiffel Tower?" --reference paris.txt --generate-answer
  aletheia check --answer-file answer.txt --reference corpus.txt --split --merge or`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Input flags
	checkCmd.Flags().StringVar(&checkAnswer, "answer", "", "answer text to check")
	checkCmd.Flags().StringVar(&checkAnswerFile, "answer-file", "", "file containing the answer text")
	checkCmd.Flags().StringVar(&checkQuestion, "question", "", "question the answer responds to (optional)")
	checkCmd.Flags().StringArrayVar(&checkRefs, "reference", nil, "reference document: inline text, file path, or URL (repeatable)")
	checkCmd.Flags().BoolVar(&generateAnswer, "generate-answer", false, "generate the answer from the references before checking it")

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")

	// Checking mode flags
	checkCmd.Flags().BoolVar(&directBackend, "direct", false, "compare triplets by text match instead of asking the model")
	checkCmd.Flags().BoolVar(&splitRefs, "split", false, "check each reference segment separately and merge the verdicts")
	checkCmd.Flags().BoolVar(&inquiryMode, "inquiry", false, "let the model reason before its verdict listing")
	checkCmd.Flags().StringVar(&mergePolicy, "merge", "", "segment merge policy: or, and, majority")

	// HTTP / cache flags
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall check timeout (increase for many or large references)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model response cache")
	checkCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification for reference fetches")
	checkCmd.Flags().BoolVar(&logPrompts, "log-prompts", false, "log rendered prompts and raw model output at debug level")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	applyCheckFlags(cfg)

	if err := configureLLM(cfg); err != nil {
		return err
	}
	// triplet extraction runs through the model even when --direct selects
	// the text-match comparison
	if cfg.Model.LLM.Provider == "" {
		return fmt.Errorf("model.llm.provider is not configured (set it in the config file or pass --llm-provider)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	answerText, err := resolveAnswer()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider: %s/%s\n", cfg.Model.LLM.Provider, cfg.Model.LLM.GeneratorModel)
		fmt.Fprintf(os.Stderr, "References: %d\n", len(checkRefs))
		fmt.Fprintf(os.Stderr, "Split mode: %v\n", cfg.Model.FactChecker.SplitReferenceTriplets)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg, nil)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Extracting and checking facts...\n")
	}

	report, err := p.CheckAnswer(ctx, pipeline.CheckRequest{
		Question:       checkQuestion,
		Answer:         answerText,
		ReferenceDocs:  checkRefs,
		GenerateAnswer: generateAnswer,
	})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d answer facts\n", len(report.AnswerTriplets))
		fmt.Fprintf(os.Stderr, "✓ Judged %d facts\n", report.Score.Checked)
		fmt.Fprintf(os.Stderr, "✓ Support index: %d/100\n", report.Score.Index)
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	renderer.WriteSummary(os.Stdout, report)

	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outJSON)
	}

	return nil
}

// applyCheckFlags lays the check command's flags over the loaded config
func applyCheckFlags(cfg *model.Config) {
	if directBackend {
		cfg.Model.FactChecker.Backend = "direct"
	}
	if splitRefs {
		cfg.Model.FactChecker.SplitReferenceTriplets = true
	}
	if inquiryMode {
		cfg.Model.FactChecker.InquiryMode = true
	}
	if mergePolicy != "" {
		cfg.Model.FactChecker.MergePolicy = mergePolicy
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if logPrompts {
		cfg.ExperimentSetup.LogPrompts = true
	}
	if insecureTLS {
		cfg.Ingest.InsecureTLS = true
	}
}

// resolveAnswer returns the answer text from --answer or --answer-file.
// With --generate-answer the answer is synthesized later from the
// references, so neither flag is required.
func resolveAnswer() (string, error) {
	if checkAnswer != "" && checkAnswerFile != "" {
		return "", fmt.Errorf("--answer and --answer-file are mutually exclusive")
	}
	if generateAnswer {
		if checkQuestion == "" {
			return "", fmt.Errorf("--generate-answer requires --question")
		}
		if len(checkRefs) == 0 {
			return "", fmt.Errorf("--generate-answer requires at least one --reference")
		}
		return "", nil
	}
	if checkAnswerFile != "" {
		data, err := os.ReadFile(checkAnswerFile)
		if err != nil {
			return "", fmt.Errorf("read answer file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if checkAnswer == "" {
		return "", fmt.Errorf("an answer is required: pass --answer, --answer-file, or --generate-answer")
	}
	return checkAnswer, nil
}
