package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/aletheia/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	tripletsText    string
	tripletsFile    string
	tripletsJSON    string
	tripletsTimeout time.Duration
)

// tripletsCmd represents the triplets command
var tripletsCmd = &cobra.Command{
	Use:   "triplets",
	Short: "Extract knowledge triplets from text",
	Long: `Triplets reduces one text to (subject, predicate, object) facts using
the configured model.

Malformed model output degrades to placeholder triplets instead of failing,
so the command always produces a well-formed triplet list.

Example:
  aletheia triplets --text "Marie Curie discovered polonium in 1898."
  aletheia triplets --file answer.txt --json triplets.json`,
	Args: cobra.NoArgs,
	RunE: runTriplets,
}

func init() {
	rootCmd.AddCommand(tripletsCmd)

	tripletsCmd.Flags().StringVar(&tripletsText, "text", "", "input text")
	tripletsCmd.Flags().StringVar(&tripletsFile, "file", "", "file containing the input text")
	tripletsCmd.Flags().StringVar(&tripletsJSON, "json", "", "output JSON path (default: stdout)")
	tripletsCmd.Flags().DurationVar(&tripletsTimeout, "timeout", 2*time.Minute, "extraction timeout")
	tripletsCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model response cache")
	tripletsCmd.Flags().BoolVar(&logPrompts, "log-prompts", false, "log rendered prompts and raw model output at debug level")
	tripletsCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	tripletsCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runTriplets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if logPrompts {
		cfg.ExperimentSetup.LogPrompts = true
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

	text, err := resolveText()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), tripletsTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, nil)
	if err != nil {
		return err
	}

	output, err := p.ExtractTriplets(ctx, text)
	if err != nil {
		return fmt.Errorf("extract triplets: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d triplets\n", len(output.Triplets))
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if tripletsJSON != "" {
		if err := renderer.RenderJSON(output, tripletsJSON); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Triplets written to %s\n", tripletsJSON)
		return nil
	}
	return renderer.WriteJSON(os.Stdout, output)
}

// resolveText returns the input text from --text or --file, exactly one of
// which must be set
func resolveText() (string, error) {
	if tripletsText != "" && tripletsFile != "" {
		return "", fmt.Errorf("--text and --file are mutually exclusive")
	}
	if tripletsFile != "" {
		data, err := os.ReadFile(tripletsFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if tripletsText == "" {
		return "", fmt.Errorf("input text is required: pass --text or --file")
	}
	return tripletsText, nil
}
