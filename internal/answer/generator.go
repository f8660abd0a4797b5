// Package answer generates reference-grounded answers, used to produce the
// faithful baseline in synthesis runs and on request in checks.
package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/prompt"
)

// Config controls answer generation
type Config struct {
	// Model overrides the invoker's configured model when non-empty
	Model string

	// NumShot is the number of demonstrations injected into the prompt
	NumShot int

	// LogPrompts emits rendered prompts and raw responses at debug level
	LogPrompts bool
}

// Generator produces an answer to a question from reference documents
type Generator struct {
	invoker llm.Invoker
	prompts *prompt.Assembler
	demos   prompt.Demonstrations
	config  Config
	log     *slog.Logger
}

// NewGenerator creates a new answer generator
func NewGenerator(invoker llm.Invoker, prompts *prompt.Assembler, demos prompt.Demonstrations, config Config, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		invoker: invoker,
		prompts: prompts,
		demos:   demos,
		config:  config,
		log:     log,
	}
}

// Generate answers question using only referenceDocs
func (g *Generator) Generate(ctx context.Context, question string, referenceDocs []string) (string, error) {
	if g.invoker == nil {
		return "", fmt.Errorf("no model invoker configured")
	}

	examples, err := g.demos.Examples(prompt.DemoAnswerGenerator, g.config.NumShot)
	if err != nil {
		return "", fmt.Errorf("load demonstrations: %w", err)
	}

	messages, err := g.prompts.Render(prompt.TemplateAnswerGeneration, map[string]string{
		"examples":            examples,
		"reference_documents": prompt.FormatDocuments(referenceDocs),
		"question":            question,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	if g.config.LogPrompts {
		prompt.LogMessages(g.log, "answer generation prompt", messages)
	}

	resp, err := g.invoker.Generate(ctx, llm.GenerateRequest{
		Messages: messages,
		Model:    g.config.Model,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}

	return resp.Content, nil
}
