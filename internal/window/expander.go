package window

import (
	"sort"
	"strings"
)

// ExpanderConfig controls context expansion at retrieval time.
type ExpanderConfig struct {
	// TargetKey is the metadata key whose value replaces node text.
	// Defaults to the parser's window key.
	TargetKey string

	// WindowSize must match the parser's window size for merge adjacency
	// detection. Only used by ExpandMerged.
	WindowSize int
}

// DefaultExpanderConfig returns the standard expander configuration.
func DefaultExpanderConfig() ExpanderConfig {
	return ExpanderConfig{
		TargetKey:  DefaultWindowKey,
		WindowSize: DefaultWindowSize,
	}
}

// Expander rewrites retrieved nodes so their consumer-visible text is the
// stored sentence window instead of the single matched sentence. It never
// mutates its inputs; the nodes held by the vector store keep their
// original embeddable text.
type Expander struct {
	config ExpanderConfig
}

// NewExpander creates an expander. An empty target key falls back to the
// default window key.
func NewExpander(config ExpanderConfig) *Expander {
	if config.TargetKey == "" {
		config.TargetKey = DefaultWindowKey
	}
	if config.WindowSize < 0 {
		config.WindowSize = DefaultWindowSize
	}
	return &Expander{config: config}
}

// Config returns the expander configuration.
func (e *Expander) Config() ExpanderConfig {
	return e.config
}

// Expand returns copies of the retrieved nodes, in the same order and
// count, with each copy's text replaced by the value stored under the
// target key. Nodes without the target key pass through unchanged; the
// originating sentence stays available under the parser's original-text
// key on nodes that carry it.
func (e *Expander) Expand(results []ScoredNode) []ScoredNode {
	expanded := make([]ScoredNode, len(results))
	for i, r := range results {
		node := r.Node.Clone()
		if windowText, ok := node.Metadata[e.config.TargetKey]; ok {
			node.Text = windowText
		}
		expanded[i] = ScoredNode{Node: node, Score: r.Score}
	}
	return expanded
}

// ExpandMerged expands like Expand, then merges nodes from the same
// document whose windows overlap or touch, so the consumer never receives
// the same sentence twice. The merged text contains every constituent
// node's original sentence. Output is ordered by descending best
// constituent score.
func (e *Expander) ExpandMerged(results []ScoredNode) []ScoredNode {
	expanded := e.Expand(results)
	if len(expanded) < 2 {
		return expanded
	}

	// Group by document, in window order
	byDoc := make(map[string][]ScoredNode)
	var docOrder []string
	for _, r := range expanded {
		if _, seen := byDoc[r.Node.DocumentID]; !seen {
			docOrder = append(docOrder, r.Node.DocumentID)
		}
		byDoc[r.Node.DocumentID] = append(byDoc[r.Node.DocumentID], r)
	}

	// Windows [a-w, a+w] and [b-w, b+w] overlap or touch when the
	// sequence distance is at most 2w+1
	maxGap := 2*e.config.WindowSize + 1

	var merged []ScoredNode
	for _, docID := range docOrder {
		group := byDoc[docID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Node.SequenceIndex < group[j].Node.SequenceIndex
		})

		current := group[0]
		for _, next := range group[1:] {
			if next.Node.SequenceIndex-current.Node.SequenceIndex <= maxGap {
				current = e.mergePair(current, next)
				continue
			}
			merged = append(merged, current)
			current = next
		}
		merged = append(merged, current)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// mergePair splices two expanded nodes whose windows overlap or touch.
// a must precede b in sequence order. The duplicated sentence span is
// detected as the longest suffix of a's text that prefixes b's text.
func (e *Expander) mergePair(a, b ScoredNode) ScoredNode {
	text := spliceWindows(a.Node.Text, b.Node.Text)

	out := a
	if b.Score > a.Score {
		out = b
	}
	node := out.Node.Clone()
	node.Text = text
	node.Metadata[e.config.TargetKey] = text
	// The merged unit spans through b; keep b's forward link and sequence
	// position so further merging stays adjacent
	node.SequenceIndex = b.Node.SequenceIndex
	node.NextID = b.Node.NextID
	node.PrevID = a.Node.PrevID

	return ScoredNode{Node: node, Score: out.Score}
}

// spliceWindows concatenates two windows, eliding the longest overlap
// between a's tail and b's head. Adjacent windows with no shared
// sentences are joined with a single space.
func spliceWindows(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(a, b[:k]) {
			return a + b[k:]
		}
	}
	return a + " " + b
}
