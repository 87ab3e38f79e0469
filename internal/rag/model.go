// Package rag provides embedding, vector storage, indexing and retrieval
// for sentence-window nodes. The embeddable text of every stored node is a
// single sentence; the surrounding window travels as metadata and is
// reattached at retrieval time by the window expander.
package rag

import (
	"context"

	"github.com/winnowhq/winnow/internal/window"
)

// NodeRecord pairs a window node with its embedding vector for storage.
type NodeRecord struct {
	Node      window.Node `json:"node"`
	Embedding []float32   `json:"embedding"`
}

// SearchOptions provides filtering options for vector search.
type SearchOptions struct {
	// DocumentIDs restricts results to nodes from the given documents
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// VectorStore defines the interface for vector storage and similarity
// search over window nodes. Implementations must round-trip node metadata
// intact, in particular the window and original-text attributes.
type VectorStore interface {
	// Insert adds node records to the store
	Insert(ctx context.Context, records []NodeRecord) error

	// Search performs top-K similarity search with optional filtering
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]window.ScoredNode, error)

	// HasDocuments reports which of the given document IDs have nodes in the store
	HasDocuments(ctx context.Context, documentIDs []string) (map[string]bool, error)

	// Delete removes all nodes belonging to the given documents
	Delete(ctx context.Context, documentIDs []string) error

	// GetStats returns store statistics (record count, index status, etc.)
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close releases resources and closes connections
	Close() error
}
