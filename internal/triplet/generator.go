// Package triplet reduces free text to knowledge triplets through a
// generative model.
package triplet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/parse"
	"github.com/ppiankov/aletheia/internal/prompt"
)

// Config controls triplet extraction
type Config struct {
	// Model overrides the invoker's configured model when non-empty
	Model string

	// NumShot is the number of demonstrations injected into the prompt
	NumShot int

	// LogPrompts emits rendered prompts and raw responses at debug level
	LogPrompts bool
}

// Generator extracts knowledge triplets from text. The raw response goes
// through the resilient triplet parser, so Generate fails only when
// rendering or model invocation fails; malformed responses degrade to
// default triplets instead.
type Generator struct {
	invoker llm.Invoker
	prompts *prompt.Assembler
	demos   prompt.Demonstrations
	parser  *parse.TripletParser
	config  Config
	log     *slog.Logger
}

// NewGenerator creates a new triplet generator
func NewGenerator(invoker llm.Invoker, prompts *prompt.Assembler, demos prompt.Demonstrations, config Config, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		invoker: invoker,
		prompts: prompts,
		demos:   demos,
		parser:  parse.NewTripletParser(log),
		config:  config,
		log:     log,
	}
}

// Generate extracts a TripletSet from inputText. The returned set is never
// empty unless the model enumerated an empty list.
func (g *Generator) Generate(ctx context.Context, inputText string) (model.TripletSet, error) {
	if g.invoker == nil {
		return nil, fmt.Errorf("no model invoker configured")
	}

	examples, err := g.demos.Examples(prompt.DemoTripletGenerator, g.config.NumShot)
	if err != nil {
		return nil, fmt.Errorf("load demonstrations: %w", err)
	}

	messages, err := g.prompts.Render(prompt.TemplateTripletGeneration, map[string]string{
		"examples":   examples,
		"input_text": inputText,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	if g.config.LogPrompts {
		prompt.LogMessages(g.log, "triplet generation prompt", messages)
	}

	resp, err := g.invoker.Generate(ctx, llm.GenerateRequest{
		Messages: messages,
		Model:    g.config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	if g.config.LogPrompts {
		g.log.Debug("triplet generation response", "raw", resp.Content)
	}

	return g.parser.Parse(resp.Content), nil
}
