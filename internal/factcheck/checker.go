// Package factcheck judges whether answer triplets are supported by
// reference triplets, either through a model or by direct text matching.
package factcheck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/parse"
	"github.com/ppiankov/aletheia/internal/prompt"
	"github.com/ppiankov/aletheia/internal/worker"
)

// Config controls the comparison behavior
type Config struct {
	// Model overrides the invoker's configured model when non-empty
	Model string

	// NumShot is the number of demonstrations injected into the prompt
	NumShot int

	// Split compares each reference segment separately and merges the
	// per-segment verdicts; otherwise all segments flatten into one call
	Split bool

	// Inquiry lets the model reason before its verdict listing, delimited
	// by "[FINAL ANSWER]"
	Inquiry bool

	// MergePolicy combines per-segment verdicts in split mode
	MergePolicy model.MergePolicy

	// SegmentWorkers above 1 runs split-mode segment calls in parallel.
	// The merge is order-independent, so parallel completion order cannot
	// change the result.
	SegmentWorkers int

	// LogPrompts emits rendered prompts and raw responses at debug level
	LogPrompts bool
}

// Checker compares answer triplets against reference triplets through a
// model. Verdict indices refer to positions in the answer set; indices the
// model skipped stay absent.
type Checker struct {
	invoker llm.Invoker
	prompts *prompt.Assembler
	demos   prompt.Demonstrations
	parser  *parse.VerdictParser
	config  Config
	log     *slog.Logger
}

// NewChecker creates a new fact checker
func NewChecker(invoker llm.Invoker, prompts *prompt.Assembler, demos prompt.Demonstrations, config Config, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		invoker: invoker,
		prompts: prompts,
		demos:   demos,
		parser:  parse.NewVerdictParser(log),
		config:  config,
		log:     log,
	}
}

// Check returns the merged verdict map for answer against reference
func (c *Checker) Check(ctx context.Context, answer model.TripletSet, reference []model.ReferenceSegment) (model.VerdictMap, error) {
	merged, _, err := c.CheckDetailed(ctx, answer, reference)
	return merged, err
}

// CheckDetailed returns the merged verdict map and, in split mode, the
// per-segment maps behind it
func (c *Checker) CheckDetailed(ctx context.Context, answer model.TripletSet, reference []model.ReferenceSegment) (model.VerdictMap, []model.VerdictMap, error) {
	if c.invoker == nil {
		return nil, nil, fmt.Errorf("no model invoker configured")
	}

	if !c.config.Split {
		verdicts, err := c.checkOne(ctx, answer, model.FlattenSegments(reference))
		if err != nil {
			return nil, nil, err
		}
		return verdicts, nil, nil
	}

	segmentVerdicts, err := c.checkSegments(ctx, answer, reference)
	if err != nil {
		return nil, nil, err
	}

	merged, err := model.MergeVerdicts(segmentVerdicts, c.config.MergePolicy)
	if err != nil {
		return nil, nil, fmt.Errorf("merge segment verdicts: %w", err)
	}
	return merged, segmentVerdicts, nil
}

// checkSegments produces one verdict map per reference segment, in segment
// order
func (c *Checker) checkSegments(ctx context.Context, answer model.TripletSet, reference []model.ReferenceSegment) ([]model.VerdictMap, error) {
	if c.config.SegmentWorkers > 1 && len(reference) > 1 {
		return c.checkSegmentsParallel(ctx, answer, reference)
	}

	verdicts := make([]model.VerdictMap, len(reference))
	for i, segment := range reference {
		m, err := c.checkOne(ctx, answer, segment)
		if err != nil {
			return nil, fmt.Errorf("check segment %d: %w", i, err)
		}
		verdicts[i] = m
	}
	return verdicts, nil
}

func (c *Checker) checkSegmentsParallel(ctx context.Context, answer model.TripletSet, reference []model.ReferenceSegment) ([]model.VerdictMap, error) {
	pool := worker.NewPool(c.config.SegmentWorkers)
	pool.Start()

	for i, segment := range reference {
		pool.Submit(&segmentJob{
			seq:     i,
			ctx:     ctx,
			checker: c,
			answer:  answer,
			segment: segment,
		})
	}

	results := pool.Wait()

	verdicts := make([]model.VerdictMap, len(reference))
	for _, res := range results {
		seg := res.(*segmentResult)
		if seg.err != nil {
			return nil, fmt.Errorf("check segment %d: %w", seg.seq, seg.err)
		}
		verdicts[seg.seq] = seg.verdicts
	}
	return verdicts, nil
}

// segmentJob compares the answer against one reference segment. It carries
// the request context: the pool's own context only governs pool shutdown.
type segmentJob struct {
	seq     int
	ctx     context.Context
	checker *Checker
	answer  model.TripletSet
	segment model.ReferenceSegment
}

func (j *segmentJob) Index() int {
	return j.seq
}

func (j *segmentJob) Execute(context.Context) worker.Result {
	verdicts, err := j.checker.checkOne(j.ctx, j.answer, j.segment)
	return &segmentResult{seq: j.seq, verdicts: verdicts, err: err}
}

type segmentResult struct {
	seq      int
	verdicts model.VerdictMap
	err      error
}

func (r *segmentResult) Index() int {
	return r.seq
}

func (r *segmentResult) GetError() error {
	return r.err
}

// checkOne runs a single comparison call
func (c *Checker) checkOne(ctx context.Context, answer model.TripletSet, reference model.TripletSet) (model.VerdictMap, error) {
	examples, err := c.demos.Examples(prompt.DemoFactChecker, c.config.NumShot)
	if err != nil {
		return nil, fmt.Errorf("load demonstrations: %w", err)
	}

	template := prompt.TemplateTripletMatch
	if c.config.Inquiry {
		template = prompt.TemplateTripletMatchInquiry
	}

	messages, err := c.prompts.Render(template, map[string]string{
		"examples":           examples,
		"answer_triplets":    prompt.FormatTriplets(answer),
		"reference_triplets": prompt.FormatTriplets(reference),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	if c.config.LogPrompts {
		prompt.LogMessages(c.log, "fact check prompt", messages)
	}

	resp, err := c.invoker.Generate(ctx, llm.GenerateRequest{
		Messages: messages,
		Model:    c.config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	if c.config.LogPrompts {
		c.log.Debug("fact check response", "raw", resp.Content)
	}

	if c.config.Inquiry {
		return c.parser.ParseInquiry(resp.Content), nil
	}
	return c.parser.Parse(resp.Content), nil
}
