package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/winnowhq/winnow/internal/window"
)

var (
	ErrAnswerFailed = errors.New("answer generation failed")
)

// Answer is a generated response to a question, with provenance.
type Answer struct {
	// Question is the question that was asked
	Question string `json:"question"`

	// Text is the generated answer content
	Text string `json:"text"`

	// Sources lists the distinct source identifiers of the context nodes
	Sources []string `json:"sources,omitempty"`

	// GeneratedAt is when this answer was created
	GeneratedAt time.Time `json:"generated_at"`

	// Model is the LLM model used
	Model string `json:"model"`
}

// Answerer produces answers from expanded context nodes using an LLM.
type Answerer struct {
	llm    LLM
	config LLMConfig
}

// NewAnswerer creates an answerer with the given LLM implementation.
func NewAnswerer(llm LLM, config LLMConfig) (*Answerer, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: LLM is required", ErrAnswerFailed)
	}
	return &Answerer{llm: llm, config: config}, nil
}

// Answer assembles a prompt from the question and the expanded context
// nodes, invokes the LLM, and returns the structured answer. It performs
// no retrieval of its own.
func (a *Answerer) Answer(ctx context.Context, question string, contexts []window.ScoredNode) (*Answer, error) {
	prompt, err := AssemblePrompt(question, contexts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnswerFailed, err)
	}

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: LLM invocation failed: %w", ErrAnswerFailed, err)
	}

	return &Answer{
		Question:    question,
		Text:        text,
		Sources:     collectSources(contexts),
		GeneratedAt: time.Now(),
		Model:       a.config.Model,
	}, nil
}

// collectSources gathers distinct source identifiers in context order.
func collectSources(contexts []window.ScoredNode) []string {
	seen := make(map[string]bool, len(contexts))
	var sources []string
	for _, c := range contexts {
		source := c.Node.Metadata["source"]
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}
	return sources
}
