package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// NewInvoker creates a new model invoker based on configuration
func NewInvoker(config Config) (Invoker, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIInvoker(config)

	case "anthropic", "claude":
		return NewAnthropicInvoker(config)

	case "ollama":
		return NewOllamaInvoker(config)

	case "":
		// No provider configured - return nil (model calls disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. API keys fall back
// to the conventional environment variables when not configured.
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	config := Config{
		Provider:      modelConfig.Provider,
		Model:         modelConfig.GeneratorModel,
		Temperature:   modelConfig.Temperature,
		RequestMaxTry: modelConfig.RequestMaxTry,
		APIKey:        modelConfig.APIKey,
		BaseURL:       modelConfig.BaseURL,
		Timeout:       modelConfig.Timeout,
		MaxTokens:     modelConfig.MaxTokens,
		HTTPProxy:     modelConfig.HTTPProxy,
		HTTPSProxy:    modelConfig.HTTPSProxy,
		NoProxy:       modelConfig.NoProxy,
	}

	if config.APIKey == "" {
		switch strings.ToLower(config.Provider) {
		case "openai":
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return config
}
