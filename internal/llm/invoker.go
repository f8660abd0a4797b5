package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Invoker defines the interface for model invocation clients
type Invoker interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the given message sequence
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a model prompt
type Message struct {
	Role    string
	Content string
}

// GenerateRequest contains the input for one model invocation
type GenerateRequest struct {
	// Messages is the full prompt as an ordered message sequence
	Messages []Message

	// Model overrides the configured model when non-empty
	Model string
}

// GenerateResponse contains the model's output
type GenerateResponse struct {
	// Content is the generated text
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds model invocation configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// Temperature is the sampling temperature
	Temperature float64

	// RequestMaxTry bounds attempts per invocation. Transient failures are
	// retried with doubling backoff until the budget is spent; callers never
	// re-invoke on their own.
	RequestMaxTry int

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout per attempt
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Model:         "",
		Temperature:   0,
		RequestMaxTry: 3,
		Timeout:       60,
		MaxTokens:     1024,
	}
}

// sleeper lets tests stub out backoff waits
type sleeper func(time.Duration)

// invokeWithRetry runs call up to maxTry times with doubling backoff,
// starting at one second. Only transient failures are retried; everything
// else surfaces immediately, as does parent context cancellation.
func invokeWithRetry(ctx context.Context, maxTry int, sleep sleeper, call func() error, transient func(error) bool) error {
	if maxTry < 1 {
		maxTry = 1
	}
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= maxTry; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if !transient(err) || ctx.Err() != nil {
			return err
		}
		if attempt < maxTry {
			sleep(backoff)
			backoff *= 2
		}
	}
	return fmt.Errorf("request failed after %d attempts: %w", maxTry, err)
}

// transientStatus reports whether an HTTP status is worth retrying
func transientStatus(code int) bool {
	return code == 429 || code >= 500
}

// apiStatusError carries the HTTP status of a failed provider call
type apiStatusError struct {
	status int
	body   string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.status, e.body)
}

// httpTransient classifies errors from the hand-rolled HTTP providers.
// Attempt timeouts count as transient; parent cancellation does not.
func httpTransient(err error) bool {
	var statusErr *apiStatusError
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.status)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
