package answer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/winnowhq/winnow/internal/window"
)

var (
	ErrMissingQuestion = errors.New("question required for prompt assembly")
)

// AssemblePrompt builds the LLM prompt from a question and its retrieved,
// already-expanded context nodes. Context sections are ordered by
// descending score and deduplicated by text so merged or repeated windows
// never appear twice.
func AssemblePrompt(question string, contexts []window.ScoredNode) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrMissingQuestion
	}

	sorted := make([]window.ScoredNode, len(contexts))
	copy(sorted, contexts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder

	b.WriteString("You are a careful assistant answering questions from retrieved document excerpts. ")
	b.WriteString("Use only the context below. If the context does not contain the answer, say so ")
	b.WriteString("instead of guessing.\n\n")

	b.WriteString("# Context\n\n")
	if len(sorted) == 0 {
		b.WriteString("(no context retrieved)\n\n")
	}

	seen := make(map[string]bool, len(sorted))
	section := 0
	for _, c := range sorted {
		text := strings.TrimSpace(c.Node.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		section++

		b.WriteString(fmt.Sprintf("## Excerpt %d (relevance %.3f)\n", section, c.Score))
		if source := c.Node.Metadata["source"]; source != "" {
			b.WriteString(fmt.Sprintf("Source: %s\n", source))
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	b.WriteString("# Question\n\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\n")
	b.WriteString("# Answer\n")

	return b.String(), nil
}
