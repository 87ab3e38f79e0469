package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/winnowhq/winnow/internal/window"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine
// similarity. It backs local runs and tests where a Milvus deployment
// is unavailable. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	records   []NodeRecord
}

// NewMemoryStore creates an in-memory vector store for the given dimension.
func NewMemoryStore(dimension int) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	return &MemoryStore{dimension: dimension}, nil
}

// Insert adds node records to the store
func (s *MemoryStore) Insert(ctx context.Context, records []NodeRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}
	for _, r := range records {
		if len(r.Embedding) != s.dimension {
			return fmt.Errorf("%w: expected %d, got %d for node %s",
				ErrInvalidDimension, s.dimension, len(r.Embedding), r.Node.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		// Store clones so callers cannot mutate indexed nodes afterwards
		s.records = append(s.records, NodeRecord{
			Node:      r.Node.Clone(),
			Embedding: append([]float32(nil), r.Embedding...),
		})
	}
	return nil
}

// Search performs top-K brute-force cosine similarity search
func (s *MemoryStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]window.ScoredNode, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, s.dimension, len(queryVector))
	}
	if topK <= 0 {
		return []window.ScoredNode{}, nil
	}

	var allowed map[string]bool
	if opts != nil && len(opts.DocumentIDs) > 0 {
		allowed = make(map[string]bool, len(opts.DocumentIDs))
		for _, id := range opts.DocumentIDs {
			allowed[id] = true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]window.ScoredNode, 0, len(s.records))
	for _, r := range s.records {
		if allowed != nil && !allowed[r.Node.DocumentID] {
			continue
		}
		scored = append(scored, window.ScoredNode{
			Node:  r.Node.Clone(),
			Score: cosineSimilarity(queryVector, r.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// HasDocuments reports which document IDs have nodes in the store
func (s *MemoryStore) HasDocuments(ctx context.Context, documentIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	present := make(map[string]bool, len(s.records))
	for _, r := range s.records {
		present[r.Node.DocumentID] = true
	}

	existing := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		if present[id] {
			existing[id] = true
		}
	}
	return existing, nil
}

// Delete removes all nodes belonging to the given documents
func (s *MemoryStore) Delete(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	doomed := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		doomed[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if !doomed[r.Node.DocumentID] {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

// GetStats returns store statistics
func (s *MemoryStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"row_count": len(s.records),
		"dimension": s.dimension,
	}, nil
}

// Close releases resources; a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
