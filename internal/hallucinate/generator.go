// Package hallucinate produces paired hallucinated and faithful answers for
// a question, used to build evaluation datasets for fact checking.
package hallucinate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/parse"
	"github.com/ppiankov/aletheia/internal/prompt"
)

// Config controls the data generation behavior
type Config struct {
	// Model overrides the invoker's configured model when non-empty
	Model string

	// Structured requests a JSON response instead of the delimited text
	// format. JSON survives model drift better but needs a model that
	// follows schema instructions.
	Structured bool

	// LogPrompts emits rendered prompts and raw responses at debug level
	LogPrompts bool
}

// Generator asks a model to answer a question twice: once faithfully to the
// reference documents and once with deliberate fabrications, reporting which
// details were fabricated.
type Generator struct {
	invoker llm.Invoker
	prompts *prompt.Assembler
	parser  *parse.HallucinationParser
	config  Config
	log     *slog.Logger
}

// NewGenerator creates a new hallucination data generator
func NewGenerator(invoker llm.Invoker, prompts *prompt.Assembler, config Config, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		invoker: invoker,
		prompts: prompts,
		parser:  parse.NewHallucinationParser(log),
		config:  config,
		log:     log,
	}
}

// Generate produces a hallucinated/faithful answer pair for question grounded
// in referenceDocs. Parse failures degrade to empty fields rather than errors
// so batch generation keeps going.
func (g *Generator) Generate(ctx context.Context, referenceDocs []string, question string) (model.HallucinationDataGeneratorOutput, error) {
	if g.invoker == nil {
		return model.HallucinationDataGeneratorOutput{}, fmt.Errorf("no model invoker configured")
	}

	template := prompt.TemplateHallucinationTest
	if g.config.Structured {
		template = prompt.TemplateHallucinationStructured
	}

	messages, err := g.prompts.Render(template, map[string]string{
		"reference_documents": prompt.FormatDocuments(referenceDocs),
		"question":            question,
	})
	if err != nil {
		return model.HallucinationDataGeneratorOutput{}, fmt.Errorf("render prompt: %w", err)
	}

	if g.config.LogPrompts {
		prompt.LogMessages(g.log, "hallucination data prompt", messages)
	}

	resp, err := g.invoker.Generate(ctx, llm.GenerateRequest{
		Messages: messages,
		Model:    g.config.Model,
	})
	if err != nil {
		return model.HallucinationDataGeneratorOutput{}, fmt.Errorf("invoke model: %w", err)
	}

	if g.config.LogPrompts {
		g.log.Debug("hallucination data response", "raw", resp.Content)
	}

	if g.config.Structured {
		return g.parser.ParseStructured(resp.Content), nil
	}
	return g.parser.ParseDelimited(resp.Content), nil
}
