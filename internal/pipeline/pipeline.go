// Package pipeline wires invoker, prompts, components and scoring into the
// three user-facing flows: checking an answer, extracting triplets, and
// synthesizing evaluation data.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/aletheia/internal/answer"
	"github.com/ppiankov/aletheia/internal/cache"
	"github.com/ppiankov/aletheia/internal/factcheck"
	"github.com/ppiankov/aletheia/internal/hallucinate"
	"github.com/ppiankov/aletheia/internal/ingest"
	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/prompt"
	"github.com/ppiankov/aletheia/internal/score"
	"github.com/ppiankov/aletheia/internal/triplet"
)

// Pipeline orchestrates the complete check process
type Pipeline struct {
	invoker     llm.Invoker
	triplets    *triplet.Generator
	answers     *answer.Generator
	checker     *factcheck.Checker
	direct      *factcheck.DirectMatcher
	synthesizer *hallucinate.Generator
	references  *ingest.Registry
	segmenter   *ingest.Segmenter
	scorer      *score.Scorer
	config      *model.Config
	log         *slog.Logger
}

// CheckRequest describes one answer to check
type CheckRequest struct {
	Question      string
	Answer        string
	ReferenceDocs []string // inline text, file paths, or URLs

	// GenerateAnswer synthesizes the answer from the references first and
	// checks the synthesized text
	GenerateAnswer bool
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg *model.Config, log *slog.Logger) (*Pipeline, error) {
	if log == nil {
		log = slog.Default()
	}

	invoker, err := buildInvoker(cfg)
	if err != nil {
		return nil, err
	}

	assembler, err := buildAssembler(cfg)
	if err != nil {
		return nil, err
	}

	demos, err := buildDemonstrations(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := ingest.NewFetcher(ingest.Config{
		UserAgent:         cfg.Ingest.UserAgent,
		Timeout:           cfg.Ingest.Timeout,
		MaxBodyBytes:      cfg.Ingest.MaxBodyBytes,
		RespectRobots:     cfg.Ingest.RespectRobots,
		InsecureTLS:       cfg.Ingest.InsecureTLS,
		RequestsPerSecond: cfg.Ingest.RequestsPerSecond,
		Burst:             cfg.Ingest.BurstSize,
		FetchWorkers:      cfg.Concurrency.FetchWorkers,
		SystemRetry:       cfg.ExperimentSetup.SystemRetry,
		HTTPProxy:         cfg.Model.LLM.HTTPProxy,
		HTTPSProxy:        cfg.Model.LLM.HTTPSProxy,
		NoProxy:           cfg.Model.LLM.NoProxy,
	}, log)

	generatorModel := cfg.Model.LLM.GeneratorModel

	return &Pipeline{
		invoker: invoker,
		triplets: triplet.NewGenerator(invoker, assembler, demos, triplet.Config{
			Model:      model.ResolveModel(cfg.Model.TripletGenerator.ModelName, generatorModel),
			NumShot:    cfg.Model.TripletGenerator.NumShot,
			LogPrompts: cfg.ExperimentSetup.LogPrompts,
		}, log),
		answers: answer.NewGenerator(invoker, assembler, demos, answer.Config{
			Model:      model.ResolveModel(cfg.Model.AnswerGenerator.ModelName, generatorModel),
			NumShot:    cfg.Model.AnswerGenerator.NumShot,
			LogPrompts: cfg.ExperimentSetup.LogPrompts,
		}, log),
		checker: factcheck.NewChecker(invoker, assembler, demos, factcheck.Config{
			Model:          model.ResolveModel(cfg.Model.FactChecker.ModelName, generatorModel),
			NumShot:        cfg.Model.FactChecker.NumShot,
			Split:          cfg.Model.FactChecker.SplitReferenceTriplets,
			Inquiry:        cfg.Model.FactChecker.InquiryMode,
			MergePolicy:    cfg.Model.FactChecker.Policy(),
			SegmentWorkers: cfg.Concurrency.SegmentWorkers,
			LogPrompts:     cfg.ExperimentSetup.LogPrompts,
		}, log),
		direct: factcheck.NewDirectMatcher(),
		synthesizer: hallucinate.NewGenerator(invoker, assembler, hallucinate.Config{
			Model:      generatorModel,
			Structured: cfg.Model.HallucinationGenerator.ParseVariant == "structured",
			LogPrompts: cfg.ExperimentSetup.LogPrompts,
		}, log),
		references: ingest.NewRegistry(fetcher),
		segmenter:  ingest.NewSegmenter(cfg.Segmenter),
		scorer:     score.NewScorer(),
		config:     cfg,
		log:        log,
	}, nil
}

// buildInvoker assembles the invocation chain: provider client, rate
// limiter, cache. The cache sits outermost so cache hits skip the limiter.
func buildInvoker(cfg *model.Config) (llm.Invoker, error) {
	base, err := llm.NewInvoker(llm.ConfigFromModel(cfg.Model.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if base == nil {
		return nil, nil
	}

	var invoker llm.Invoker = base
	invoker = llm.NewRateLimitedInvoker(invoker, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	if cfg.Cache.Enabled {
		invoker = llm.NewCachedInvoker(invoker, cache.NewLayeredCache(cfg.Cache.Dir, cfg.Cache.TTL), cfg.Cache.TTL)
	}
	return invoker, nil
}

func buildAssembler(cfg *model.Config) (*prompt.Assembler, error) {
	bank := prompt.DefaultBank()
	if cfg.Path.Prompts != "" {
		loaded, err := prompt.LoadBank(cfg.Path.Prompts)
		if err != nil {
			return nil, fmt.Errorf("load prompt bank: %w", err)
		}
		bank = loaded
	}
	return prompt.NewAssembler(bank)
}

func buildDemonstrations(cfg *model.Config) (prompt.Demonstrations, error) {
	if cfg.Path.Data.Demo != "" {
		demos, err := prompt.LoadDemonstrations(cfg.Path.Data.Demo)
		if err != nil {
			return nil, fmt.Errorf("load demonstrations: %w", err)
		}
		return demos, nil
	}
	return prompt.NewStaticDemonstrations(), nil
}

// CheckAnswer runs the full check flow and assembles the report
func (p *Pipeline) CheckAnswer(ctx context.Context, req CheckRequest) (*model.CheckReport, error) {
	// 1. Load reference documents
	docs, err := p.references.LoadAll(ctx, req.ReferenceDocs)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}

	answerText := req.Answer
	if req.GenerateAnswer {
		answerText, err = p.answers.Generate(ctx, req.Question, docTexts(docs))
		if err != nil {
			return nil, fmt.Errorf("generate answer: %w", err)
		}
		p.log.Info("generated answer from references", "chars", len(answerText))
	}

	report := model.NewCheckReport(req.Question, answerText)
	if p.invoker != nil {
		report.Provider = p.invoker.Name()
		report.Model = p.config.Model.LLM.GeneratorModel
	}

	// 2. Extract answer triplets
	answerTriplets, err := p.triplets.Generate(ctx, answerText)
	if err != nil {
		return nil, fmt.Errorf("extract answer triplets: %w", err)
	}
	p.log.Debug("extracted answer triplets", "count", len(answerTriplets))

	// 3. Segment references and extract reference triplets per chunk
	chunks, counts, err := p.segmenter.SegmentAll(docs)
	if err != nil {
		return nil, fmt.Errorf("segment references: %w", err)
	}

	segments := make([]model.ReferenceSegment, len(chunks))
	for i, chunk := range chunks {
		set, err := p.triplets.Generate(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("extract reference triplets (segment %d): %w", i, err)
		}
		segments[i] = model.ReferenceSegment(set)
	}

	sources := make([]model.SourceMeta, len(docs))
	for i := range docs {
		sources[i] = docs[i].Source
		sources[i].Segments = counts[i]
	}

	// 4. Compare answer triplets against the references
	var merged model.VerdictMap
	var perSegment []model.VerdictMap
	if p.config.Model.FactChecker.Backend == "direct" {
		merged = p.direct.Match(answerTriplets, segments).FactCheckPredictionBinary
	} else {
		merged, perSegment, err = p.checker.CheckDetailed(ctx, answerTriplets, segments)
		if err != nil {
			return nil, fmt.Errorf("fact check: %w", err)
		}
	}

	// 5. Score and assemble
	result := p.scorer.Calculate(answerTriplets, merged, perSegment)
	if len(segments) == 0 {
		result.Signals = append([]model.Signal{{
			Type:        model.SignalNoReferences,
			Severity:    model.SeverityCritical,
			Description: "No reference text to check against",
		}}, result.Signals...)
		result.Confidence = "low"
	}

	report.AnswerTriplets = answerTriplets
	report.Sources = sources
	report.SplitMode = p.config.Model.FactChecker.SplitReferenceTriplets
	if report.SplitMode {
		report.MergePolicy = p.config.Model.FactChecker.MergePolicy
	}
	report.Verdicts = merged
	if p.config.Output.IncludeSegments {
		report.SegmentVerdicts = perSegment
	}
	report.Score = result

	return report, nil
}

// CheckRecord checks one batch record. It satisfies the batch processor's
// checker contract.
func (p *Pipeline) CheckRecord(ctx context.Context, record model.CheckRecord) (*model.CheckReport, error) {
	return p.CheckAnswer(ctx, CheckRequest{
		Question:      record.Question,
		Answer:        record.Answer,
		ReferenceDocs: record.ReferenceDocuments,
	})
}

// ExtractTriplets runs triplet extraction on one text
func (p *Pipeline) ExtractTriplets(ctx context.Context, text string) (*model.TripletGeneratorOutput, error) {
	set, err := p.triplets.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	return &model.TripletGeneratorOutput{Triplets: set.Slices()}, nil
}

// Synthesize produces a hallucinated/faithful answer pair for evaluation
// datasets
func (p *Pipeline) Synthesize(ctx context.Context, refs []string, question string) (*model.SynthReport, error) {
	docs, err := p.references.LoadAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}

	texts := docTexts(docs)
	output, err := p.synthesizer.Generate(ctx, texts, question)
	if err != nil {
		return nil, err
	}

	report := model.NewSynthReport(question)
	report.Knowledge = texts
	report.Structured = p.config.Model.HallucinationGenerator.ParseVariant == "structured"
	if p.invoker != nil {
		report.Provider = p.invoker.Name()
		report.Model = p.config.Model.LLM.GeneratorModel
	}
	report.Output = output
	return report, nil
}

func docTexts(docs []ingest.Document) []string {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	return texts
}
