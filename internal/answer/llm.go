// Package answer turns retrieved sentence-window context into a final
// response. It defines a provider-agnostic LLM interface with an OpenAI
// implementation and a deterministic mock for testing, plus the prompt
// assembly that feeds expanded windows to the model.
package answer

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4o")
	Model string

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns sensible defaults for answering questions
// over retrieved context.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o",
		Temperature: 0, // model default
		MaxTokens:   1500,
	}
}
