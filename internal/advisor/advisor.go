package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrGenerationFailed = errors.New("advice generation failed")
)

// Advice represents generated guidance for acting on an analysis report.
type Advice struct {
	// ContextHash identifies the analysis this advice describes
	ContextHash string `json:"context_hash"`

	// Text is the generated advice content
	Text string `json:"text"`

	// GeneratedAt is when this advice was created
	GeneratedAt time.Time `json:"generated_at"`

	// Model is the LLM model used to generate this advice
	Model string `json:"model"`
}

// Generator produces advice from reports using an LLM.
// It invokes an LLM on an already-assembled prompt.
type Generator struct {
	llm    LLM
	config LLMConfig
}

// NewGenerator creates an advice generator with the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig) *Generator {
	return &Generator{
		llm:    llm,
		config: config,
	}
}

// Generate creates advice by invoking the LLM with an already-assembled prompt.
// It must not perform retrieval or prompt construction.
func (g *Generator) Generate(ctx context.Context, contextHash string, prompt string) (*Advice, error) {
	if g.llm == nil {
		return nil, fmt.Errorf("%w: LLM is required", ErrGenerationFailed)
	}
	if contextHash == "" {
		return nil, fmt.Errorf("%w: context hash is required", ErrGenerationFailed)
	}
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrGenerationFailed)
	}

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: LLM invocation failed: %w", ErrGenerationFailed, err)
	}

	return &Advice{
		ContextHash: contextHash,
		Text:        text,
		GeneratedAt: time.Now(),
		Model:       g.config.Model,
	}, nil
}
