package rag

import (
	"context"
	"fmt"

	"github.com/winnowhq/winnow/internal/window"
)

// IndexOptions provides configuration for node indexing
type IndexOptions struct {
	// BatchSize determines how many nodes to embed and insert at once
	BatchSize int

	// ForceReindex deletes existing nodes for the affected documents first
	ForceReindex bool

	// SkipExisting skips nodes of documents already present in the store
	SkipExisting bool
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    64,
		ForceReindex: false,
		SkipExisting: true,
	}
}

// IndexNodes embeds window nodes and stores them in the vector store.
// Only each node's single-sentence text is embedded; the window metadata
// rides along in the record and is never part of the embedding input.
func IndexNodes(ctx context.Context, nodes []window.Node, embedder Embedder, store VectorStore, opts IndexOptions) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	if embedder == nil {
		return 0, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return 0, fmt.Errorf("vector store cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	documentIDs := uniqueDocumentIDs(nodes)

	if opts.ForceReindex {
		if err := store.Delete(ctx, documentIDs); err != nil {
			return 0, fmt.Errorf("failed to delete existing nodes: %w", err)
		}
	}

	toIndex := nodes
	if opts.SkipExisting && !opts.ForceReindex {
		existing, err := store.HasDocuments(ctx, documentIDs)
		if err == nil && len(existing) > 0 {
			filtered := make([]window.Node, 0, len(nodes))
			for _, node := range nodes {
				if !existing[node.DocumentID] {
					filtered = append(filtered, node)
				}
			}
			toIndex = filtered
		}
		// A failed existence check falls through to indexing everything;
		// the insert path reports real storage errors
	}

	indexed := 0
	for start := 0; start < len(toIndex); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(toIndex) {
			end = len(toIndex)
		}
		batch := toIndex[start:end]

		texts := make([]string, len(batch))
		for i, node := range batch {
			texts[i] = node.Text
		}

		embeddings, err := embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		if len(embeddings) != len(batch) {
			return indexed, fmt.Errorf("embedder returned %d records for %d texts", len(embeddings), len(batch))
		}

		records := make([]NodeRecord, len(batch))
		for i, node := range batch {
			records[i] = NodeRecord{
				Node:      node,
				Embedding: embeddings[i].Embedding,
			}
		}

		if err := store.Insert(ctx, records); err != nil {
			return indexed, fmt.Errorf("failed to insert batch starting at %d: %w", start, err)
		}
		indexed += len(batch)
	}

	return indexed, nil
}

// uniqueDocumentIDs returns the distinct document IDs across nodes,
// preserving first-seen order.
func uniqueDocumentIDs(nodes []window.Node) []string {
	seen := make(map[string]bool, len(nodes))
	var ids []string
	for _, node := range nodes {
		if !seen[node.DocumentID] {
			seen[node.DocumentID] = true
			ids = append(ids, node.DocumentID)
		}
	}
	return ids
}
