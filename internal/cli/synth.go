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
	synthQuestion   string
	synthRefs       []string
	synthJSON       string
	synthTimeout    time.Duration
	synthStructured bool
)

// synthCmd represents the synth command
var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesize hallucination evaluation data",
	Long: `Synth asks the model to answer a question twice from the same
references: once faithfully, and once with plausible but false details
injected, enumerating the injected details.

The paired answers are evaluation data for fact-checking systems: the
faithful answer should check clean, the hallucinated one should not, and
the listed details say exactly where.

Example:
  aletheia synth --question "Who discovered polonium?" --reference curie.txt
  aletheia synth --question "..." --reference notes.txt --structured --json record.json`,
	Args: cobra.NoArgs,
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().StringVar(&synthQuestion, "question", "", "question the answers respond to (required)")
	synthCmd.Flags().StringArrayVar(&synthRefs, "reference", nil, "reference document: inline text, file path, or URL (repeatable, required)")
	synthCmd.Flags().StringVar(&synthJSON, "json", "", "output JSON path (default: stdout)")
	synthCmd.Flags().DurationVar(&synthTimeout, "timeout", 2*time.Minute, "synthesis timeout")
	synthCmd.Flags().BoolVar(&synthStructured, "structured", false, "request a JSON response shape instead of delimited sections")
	synthCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model response cache")
	synthCmd.Flags().BoolVar(&logPrompts, "log-prompts", false, "log rendered prompts and raw model output at debug level")
	synthCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	synthCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runSynth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if synthStructured {
		cfg.Model.HallucinationGenerator.ParseVariant = "structured"
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

	if synthQuestion == "" {
		return fmt.Errorf("--question is required")
	}
	if len(synthRefs) == 0 {
		return fmt.Errorf("at least one --reference is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), synthTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, nil)
	if err != nil {
		return err
	}

	report, err := p.Synthesize(ctx, synthRefs, synthQuestion)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Generated answer pair (faithful: %d chars, hallucinated: %d chars)\n",
			len(report.Output.GeneratedNonHlcntnAnswer), len(report.Output.GeneratedHlcntnAnswer))
	}
	if report.Output.GeneratedHlcntnAnswer == "" && report.Output.GeneratedNonHlcntnAnswer == "" {
		fmt.Fprintf(os.Stderr, "⚠️  Response did not parse; record fields are empty (try --structured or a different model)\n")
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if synthJSON != "" {
		if err := renderer.RenderJSON(report, synthJSON); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Synthesis record written to %s\n", synthJSON)
		return nil
	}
	return renderer.WriteJSON(os.Stdout, report)
}
