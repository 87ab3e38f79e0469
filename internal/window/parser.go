package window

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/winnowhq/winnow/internal/document"
)

// Common errors for parser configuration
var (
	ErrInvalidWindowSize = errors.New("window size must be zero or positive")
	ErrInvalidKey        = errors.New("invalid metadata key")
)

// Default metadata keys and window radius
const (
	DefaultWindowKey       = "window"
	DefaultOriginalTextKey = "original_text"
	DefaultWindowSize      = 3
)

// ParserConfig controls window assembly.
type ParserConfig struct {
	// WindowSize is the number of sentences captured on each side of a
	// node's sentence. Zero degenerates to plain per-sentence chunking.
	WindowSize int

	// WindowKey is the metadata key holding the assembled window text
	WindowKey string

	// OriginalTextKey is the metadata key holding the original sentence
	OriginalTextKey string
}

// DefaultParserConfig returns the standard parser configuration.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		WindowSize:      DefaultWindowSize,
		WindowKey:       DefaultWindowKey,
		OriginalTextKey: DefaultOriginalTextKey,
	}
}

// NodeParser builds window nodes from documents. It is stateless after
// construction and safe for concurrent use.
type NodeParser struct {
	config    ParserConfig
	segmenter Segmenter
}

// NewNodeParser creates a parser with the given configuration and segmenter.
// A nil segmenter falls back to the default punctuation segmenter.
// Configuration errors are surfaced here, never during parsing.
func NewNodeParser(config ParserConfig, segmenter Segmenter) (*NodeParser, error) {
	if config.WindowSize < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, config.WindowSize)
	}
	if config.WindowKey == "" {
		config.WindowKey = DefaultWindowKey
	}
	if config.OriginalTextKey == "" {
		config.OriginalTextKey = DefaultOriginalTextKey
	}
	if config.WindowKey == config.OriginalTextKey {
		return nil, fmt.Errorf("%w: window key and original text key must differ, both are %q",
			ErrInvalidKey, config.WindowKey)
	}
	if segmenter == nil {
		segmenter = NewPunctSegmenter()
	}
	return &NodeParser{config: config, segmenter: segmenter}, nil
}

// Config returns the parser configuration.
func (p *NodeParser) Config() ParserConfig {
	return p.config
}

// Parse builds one node per sentence of the document. An empty or
// whitespace-only document yields no nodes. Each node's text is its
// trimmed sentence; its window metadata holds the sentences within
// WindowSize positions on either side, joined by single spaces.
func (p *NodeParser) Parse(doc document.Document) []Node {
	sentences := p.segmenter.Segment(doc.Text)
	if len(sentences) == 0 {
		return nil
	}

	texts := make([]string, len(sentences))
	ids := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
		ids[i] = uuid.NewString()
	}

	nodes := make([]Node, len(sentences))
	for i := range sentences {
		lo := i - p.config.WindowSize
		if lo < 0 {
			lo = 0
		}
		hi := i + p.config.WindowSize
		if hi > len(sentences)-1 {
			hi = len(sentences) - 1
		}

		metadata := map[string]string{
			p.config.WindowKey:       strings.Join(texts[lo:hi+1], " "),
			p.config.OriginalTextKey: texts[i],
		}
		for k, v := range doc.Metadata {
			if _, taken := metadata[k]; !taken {
				metadata[k] = v
			}
		}
		if doc.Source != "" {
			if _, taken := metadata["source"]; !taken {
				metadata["source"] = doc.Source
			}
		}

		node := Node{
			ID:            ids[i],
			DocumentID:    doc.ID,
			Text:          texts[i],
			SequenceIndex: i,
			Metadata:      metadata,
		}
		if i > 0 {
			node.PrevID = ids[i-1]
		}
		if i < len(sentences)-1 {
			node.NextID = ids[i+1]
		}
		nodes[i] = node
	}

	return nodes
}

// ParseAll parses documents concurrently, one worker per document, and
// returns the nodes flattened in document order. Documents are independent
// so no synchronization beyond the join is needed.
func (p *NodeParser) ParseAll(docs []document.Document) []Node {
	if len(docs) == 0 {
		return nil
	}

	perDoc := make([][]Node, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc document.Document) {
			defer wg.Done()
			perDoc[i] = p.Parse(doc)
		}(i, doc)
	}
	wg.Wait()

	var nodes []Node
	for _, batch := range perDoc {
		nodes = append(nodes, batch...)
	}
	return nodes
}
