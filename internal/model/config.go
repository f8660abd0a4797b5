package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete aletheia configuration. It is loaded once at startup
// (file, env, flags) and validated before any model call.
type Config struct {
	ExperimentSetup ExperimentSetupConfig `yaml:"experiment_setup" mapstructure:"experiment_setup"`
	Model           ModelConfig           `yaml:"model" mapstructure:"model"`
	Path            PathConfig            `yaml:"path" mapstructure:"path"`
	Ingest          IngestConfig          `yaml:"ingest" mapstructure:"ingest"`
	Segmenter       SegmenterConfig       `yaml:"segmenter" mapstructure:"segmenter"`
	Cache           CacheConfig           `yaml:"cache" mapstructure:"cache"`
	RateLimit       RateLimitConfig       `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency     ConcurrencyConfig     `yaml:"concurrency" mapstructure:"concurrency"`
	Output          OutputConfig          `yaml:"output" mapstructure:"output"`
	Logging         LoggingConfig         `yaml:"logging" mapstructure:"logging"`
}

// ExperimentSetupConfig controls diagnostics and outer retry behavior
type ExperimentSetupConfig struct {
	// SystemRetry bounds retries for non-model transient operations (fetches)
	SystemRetry int `yaml:"system_retry" mapstructure:"system_retry" validate:"gte=1,lte=10"`

	// LogPrompts emits rendered prompts and raw model output at debug level
	LogPrompts bool `yaml:"log_prompts" mapstructure:"log_prompts"`
}

// ModelConfig groups the model-side component configuration
type ModelConfig struct {
	LLM                    LLMConfig                    `yaml:"llm" mapstructure:"llm"`
	AnswerGenerator        AnswerGeneratorConfig        `yaml:"answer_generator" mapstructure:"answer_generator"`
	TripletGenerator       TripletGeneratorConfig       `yaml:"triplet_generator" mapstructure:"triplet_generator"`
	FactChecker            FactCheckerConfig            `yaml:"fact_checker" mapstructure:"fact_checker"`
	HallucinationGenerator HallucinationGeneratorConfig `yaml:"hallucination_generator" mapstructure:"hallucination_generator"`
}

// LLMConfig configures the model invocation client
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (direct-only mode)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// GeneratorModel is the model identifier passed to the invoker
	GeneratorModel string `yaml:"generator_model" mapstructure:"generator_model"`

	// Temperature is the sampling temperature
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`

	// RequestMaxTry is the retry budget of the invocation client. The client
	// exhausts it before a terminal failure surfaces; the core never
	// re-invokes on its own.
	RequestMaxTry int `yaml:"request_max_try" mapstructure:"request_max_try" validate:"gte=1,lte=10"`

	// APIKey for OpenAI/Anthropic (normally from environment)
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL for custom endpoints (e.g., Ollama, proxies)
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout per attempt, in seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout" validate:"gte=1"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=1"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// AnswerGeneratorConfig configures the grounded answer generator
type AnswerGeneratorConfig struct {
	// ModelName overrides model.llm.generator_model when non-empty
	ModelName string `yaml:"model_name" mapstructure:"model_name"`

	// NumShot is the number of demonstrations injected into the prompt
	NumShot int `yaml:"num_shot" mapstructure:"num_shot" validate:"gte=0"`
}

// TripletGeneratorModelParams are extraction-tuning parameters passed through
// to the generator backend
type TripletGeneratorModelParams struct {
	// OpenIEAffinityProbabilityCap caps affinity probabilities in
	// affinity-based extraction backends; opaque to the parsing core
	OpenIEAffinityProbabilityCap float64 `yaml:"openie_affinity_probability_cap" mapstructure:"openie_affinity_probability_cap" validate:"gt=0,lte=1"`
}

// TripletGeneratorConfig configures triplet extraction
type TripletGeneratorConfig struct {
	ModelName   string                      `yaml:"model_name" mapstructure:"model_name"`
	ModelParams TripletGeneratorModelParams `yaml:"model_params" mapstructure:"model_params"`
	NumShot     int                         `yaml:"num_shot" mapstructure:"num_shot" validate:"gte=0"`
}

// FactCheckerConfig configures the comparison component
type FactCheckerConfig struct {
	ModelName string `yaml:"model_name" mapstructure:"model_name"`
	NumShot   int    `yaml:"num_shot" mapstructure:"num_shot" validate:"gte=0"`

	// SplitReferenceTriplets selects split vs non-split comparison mode
	SplitReferenceTriplets bool `yaml:"split_reference_triplets" mapstructure:"split_reference_triplets"`

	// InquiryMode selects the reasoning-delimited vs plain verdict prompt
	InquiryMode bool `yaml:"inquiry_mode" mapstructure:"inquiry_mode"`

	// MergePolicy combines per-segment verdicts in split mode: or, and, majority
	MergePolicy string `yaml:"merge_policy" mapstructure:"merge_policy" validate:"oneof=or and majority"`

	// Backend selects the comparison engine: "llm" or "direct" (text match)
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=llm direct"`
}

// HallucinationGeneratorConfig configures hallucination data synthesis
type HallucinationGeneratorConfig struct {
	// ParseVariant selects the response shape and parser: "delimiter"
	// (sectioned free text) or "structured" (JSON object)
	ParseVariant string `yaml:"parse_variant" mapstructure:"parse_variant" validate:"oneof=delimiter structured"`
}

// PathDataConfig locates data directories
type PathDataConfig struct {
	Base string `yaml:"base" mapstructure:"base"`
	Demo string `yaml:"demo" mapstructure:"demo"`
}

// PathConfig locates the prompt bank and data directories
type PathConfig struct {
	Data PathDataConfig `yaml:"data" mapstructure:"data"`

	// Prompts is an optional YAML file overriding the built-in prompt bank
	Prompts string `yaml:"prompts" mapstructure:"prompts"`
}

// IngestConfig configures reference-document fetching
type IngestConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gte=1024"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`

	// Per-host politeness for reference fetches
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=1"`
}

// SegmenterConfig configures reference-document chunking
type SegmenterConfig struct {
	Enabled      bool `yaml:"enabled" mapstructure:"enabled"`
	ChunkSize    int  `yaml:"chunk_size" mapstructure:"chunk_size" validate:"gte=100"`
	ChunkOverlap int  `yaml:"chunk_overlap" mapstructure:"chunk_overlap" validate:"gte=0"`
}

// CacheConfig configures the model-response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig throttles model invocations
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=1"`
}

// ConcurrencyConfig bounds parallel work. Segment comparisons are sequential
// by default; raising SegmentWorkers parallelizes them (safe: the merge is
// order-independent).
type ConcurrencyConfig struct {
	SegmentWorkers int `yaml:"segment_workers" mapstructure:"segment_workers" validate:"gte=1"`
	BatchWorkers   int `yaml:"batch_workers" mapstructure:"batch_workers" validate:"gte=1"`
	FetchWorkers   int `yaml:"fetch_workers" mapstructure:"fetch_workers" validate:"gte=1"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose         bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeSegments bool `yaml:"include_segments" mapstructure:"include_segments"`
}

// LoggingConfig controls the process logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".aletheia")

	return &Config{
		ExperimentSetup: ExperimentSetupConfig{
			SystemRetry: 3,
			LogPrompts:  false,
		},
		Model: ModelConfig{
			LLM: LLMConfig{
				Provider:       "openai",
				GeneratorModel: "gpt-4o-mini",
				Temperature:    0.0,
				RequestMaxTry:  3,
				Timeout:        60,
				MaxTokens:      1024,
			},
			AnswerGenerator: AnswerGeneratorConfig{
				NumShot: 2,
			},
			TripletGenerator: TripletGeneratorConfig{
				ModelParams: TripletGeneratorModelParams{
					OpenIEAffinityProbabilityCap: 1.0,
				},
				NumShot: 3,
			},
			FactChecker: FactCheckerConfig{
				NumShot:                2,
				SplitReferenceTriplets: false,
				InquiryMode:            false,
				MergePolicy:            string(MergeOR),
				Backend:                "llm",
			},
			HallucinationGenerator: HallucinationGeneratorConfig{
				ParseVariant: "delimiter",
			},
		},
		Path: PathConfig{
			Data: PathDataConfig{
				Base: filepath.Join(base, "data"),
			},
		},
		Ingest: IngestConfig{
			UserAgent:         "Aletheia/0.1 (+https://github.com/ppiankov/aletheia)",
			Timeout:           30 * time.Second,
			MaxBodyBytes:      2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 1,
			BurstSize:         3,
		},
		Segmenter: SegmenterConfig{
			Enabled:      true,
			ChunkSize:    2000,
			ChunkOverlap: 200,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(base, "cache"),
			TTL:     24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{
			SegmentWorkers: 1,
			BatchWorkers:   runtime.NumCPU(),
			FetchWorkers:   8,
		},
		Output: OutputConfig{
			Verbose:         false,
			IncludeSegments: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration once at startup
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Segmenter.ChunkOverlap >= c.Segmenter.ChunkSize {
		return fmt.Errorf("invalid configuration: segmenter.chunk_overlap (%d) must be smaller than segmenter.chunk_size (%d)",
			c.Segmenter.ChunkOverlap, c.Segmenter.ChunkSize)
	}
	if c.Model.FactChecker.Backend == "llm" && c.Model.LLM.Provider == "" {
		return fmt.Errorf("invalid configuration: model.llm.provider is required unless model.fact_checker.backend is \"direct\"")
	}
	return nil
}

// Policy returns the configured merge policy as a typed value
func (c *FactCheckerConfig) Policy() MergePolicy {
	return MergePolicy(c.MergePolicy)
}

// ResolveModel returns the per-component model name, falling back to the
// global generator model
func ResolveModel(componentModel, generatorModel string) string {
	if componentModel != "" {
		return componentModel
	}
	return generatorModel
}
