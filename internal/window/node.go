package window

// Node is the atomic retrievable unit: a single sentence plus metadata.
// Text is what gets embedded and matched; the surrounding sentence window
// travels in Metadata under the parser's configured window key so it
// survives storage and retrieval.
type Node struct {
	// ID uniquely identifies the node
	ID string `json:"id"`

	// DocumentID references the owning document
	DocumentID string `json:"document_id"`

	// Text is the single originating sentence
	Text string `json:"text"`

	// SequenceIndex is the sentence's position within its document
	SequenceIndex int `json:"sequence_index"`

	// PrevID and NextID reference adjacent nodes in the same document.
	// Empty at document boundaries.
	PrevID string `json:"prev_id,omitempty"`
	NextID string `json:"next_id,omitempty"`

	// Metadata carries the window and original-text attributes plus any
	// attributes inherited from the document
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the node. Metadata is copied so mutating
// the clone never touches the original.
func (n Node) Clone() Node {
	clone := n
	if n.Metadata != nil {
		clone.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// ScoredNode is a node paired with its similarity score, as returned by a
// vector store search.
type ScoredNode struct {
	Node  Node    `json:"node"`
	Score float32 `json:"score"`
}
