// Package window implements sentence-window retrieval units: a parser that
// splits documents into one node per sentence while attaching a window of
// neighboring sentences as metadata, and an expander that swaps a retrieved
// node's text for its stored window before the node reaches a consumer.
package window

import "strings"

// Sentence is a segment of a document's text. Raw holds the exact source
// substring including trailing whitespace, so that concatenating all Raw
// values in order reconstructs the input. Text is the trimmed form used
// for node text and window assembly.
type Sentence struct {
	Text  string
	Raw   string
	Start int
}

// Segmenter splits raw text into an ordered sequence of sentences.
// Implementations must be deterministic and total: every character of the
// input belongs to exactly one sentence's Raw value.
type Segmenter interface {
	Segment(text string) []Sentence
}

// defaultAbbreviations are tokens a period may end without terminating the
// sentence. Matched case-insensitively against the word ending at the period.
var defaultAbbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.", "sr.", "jr.", "st.",
	"vs.", "etc.", "e.g.", "i.e.", "cf.", "fig.", "no.", "dept.",
	"approx.", "a.m.", "p.m.", "u.s.", "u.k.", "inc.", "ltd.", "co.",
}

// PunctSegmenter splits text on sentence-terminating punctuation (".", "?",
// "!") followed by whitespace or end of text, with an exception list that
// keeps common abbreviations from ending a sentence. Decimal numbers never
// split because the character after the period is not whitespace.
type PunctSegmenter struct {
	exceptions map[string]bool
}

// NewPunctSegmenter creates a punctuation segmenter with the default
// abbreviation exceptions plus any extra tokens provided. Extra tokens
// should include their trailing period (e.g. "op.").
func NewPunctSegmenter(extra ...string) *PunctSegmenter {
	exceptions := make(map[string]bool, len(defaultAbbreviations)+len(extra))
	for _, a := range defaultAbbreviations {
		exceptions[a] = true
	}
	for _, a := range extra {
		exceptions[strings.ToLower(a)] = true
	}
	return &PunctSegmenter{exceptions: exceptions}
}

// Segment splits text into sentences. Whitespace-only input yields nil.
// A trailing fragment without terminating punctuation becomes the final
// sentence.
func (s *PunctSegmenter) Segment(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []Sentence
	start := 0
	i := 0
	n := len(text)

	for i < n {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}

		end := i + 1
		// Closing quotes and brackets after the terminator stay with the sentence
		for end < n && isClosing(text[end]) {
			end++
		}

		atBoundary := end == n || isSpace(text[end])
		if atBoundary && c == '.' && s.isAbbreviation(text, i) {
			atBoundary = false
		}
		if !atBoundary {
			i++
			continue
		}

		// Inter-sentence whitespace is attached to the preceding sentence so
		// segmentation stays total
		for end < n && isSpace(text[end]) {
			end++
		}

		raw := text[start:end]
		sentences = append(sentences, Sentence{
			Text:  strings.TrimSpace(raw),
			Raw:   raw,
			Start: start,
		})
		start = end
		i = end
	}

	if start < n {
		raw := text[start:]
		sentences = append(sentences, Sentence{
			Text:  strings.TrimSpace(raw),
			Raw:   raw,
			Start: start,
		})
	}

	return sentences
}

// isAbbreviation reports whether the period at index i ends a token from the
// exception list. The token is the run of non-space characters ending at and
// including the period.
func (s *PunctSegmenter) isAbbreviation(text string, i int) bool {
	j := i
	for j > 0 && !isSpace(text[j-1]) {
		j--
	}
	token := strings.ToLower(text[j : i+1])
	return s.exceptions[token]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isClosing(c byte) bool {
	switch c {
	case '"', '\'', ')', ']', '}':
		return true
	}
	return false
}
