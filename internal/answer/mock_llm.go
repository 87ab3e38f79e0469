package answer

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses based on prompt content.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a default response is generated from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(prompt), nil
}

// generateMockResponse creates a predictable answer from the prompt.
func generateMockResponse(prompt string) string {
	question := "unknown"
	if idx := strings.Index(prompt, "# Question"); idx >= 0 {
		remainder := strings.TrimSpace(prompt[idx+len("# Question"):])
		if split := strings.SplitN(remainder, "\n", 2); len(split) > 0 {
			question = strings.TrimSpace(split[0])
		}
	}

	excerpts := strings.Count(prompt, "## Excerpt ")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Answering %q from %d context excerpts. ", question, excerpts))
	if excerpts == 0 {
		b.WriteString("The retrieved context does not contain enough information to answer.")
	} else {
		b.WriteString("The retrieved context supports a direct answer.")
	}
	return b.String()
}
