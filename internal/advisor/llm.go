// Package advisor provides LLM-powered remediation advice for analysis
// reports. It defines a provider-agnostic LLM interface with a concrete
// OpenAI implementation and deterministic mocks for testing. The advisor
// consumes pre-assembled prompts and returns structured advice objects.
package advisor

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4", "gpt-3.5-turbo")
	Model string

	// Temperature controls randomness (0.0 = deterministic, 2.0 = very random)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// validate checks the fields every provider needs before a client is built
func (c LLMConfig) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: missing API key (set OPENAI_API_KEY or provide in config)", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2]", ErrInvalidConfig)
	}
	return nil
}

// DefaultLLMConfig returns sensible defaults for advice generation.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o",
		Temperature: 0, // model default
		MaxTokens:   2000,
	}
}
