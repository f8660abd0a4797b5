package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIInvoker implements the Invoker interface for OpenAI models
type OpenAIInvoker struct {
	client *openai.Client
	config Config
	sleep  sleeper
}

// NewOpenAIInvoker creates a new OpenAI invoker
func NewOpenAIInvoker(config Config) (*OpenAIInvoker, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIInvoker{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		sleep:  time.Sleep,
	}, nil
}

// Name returns the provider name
func (p *OpenAIInvoker) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIInvoker) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		slog.Warn("OpenAI API check failed", "error", err)
		return false
	}
	return true
}

// Generate produces a completion using OpenAI's Chat Completions API
func (p *OpenAIInvoker) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	// Determine model
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	temperature := float32(p.config.Temperature)
	if temperature == 0 {
		// a literal zero is dropped from the wire format; the smallest
		// positive value keeps greedy sampling explicit
		temperature = math.SmallestNonzeroFloat32
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp openai.ChatCompletionResponse
	call := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var err error
		resp, err = p.client.CreateChatCompletion(attemptCtx, chatReq)
		return err
	}
	if err := invokeWithRetry(ctx, p.config.RequestMaxTry, p.sleep, call, openAITransient); err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &GenerateResponse{
		Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// openAITransient classifies go-openai client errors. Rate limits, server
// errors and transport faults are transient; other API errors are not.
func openAITransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return transientStatus(reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func openAIRole(role string) string {
	switch role {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
