package rag

import (
	"context"
	"fmt"

	"github.com/winnowhq/winnow/internal/window"
)

// Retriever provides semantic retrieval of window nodes for a free-text
// query. It embeds the query and delegates ranking to the vector store.
type Retriever struct {
	embedder Embedder
	store    VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, store VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	return &Retriever{embedder: embedder, store: store}, nil
}

// Retrieve returns the topK nodes most similar to the query, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, opts *SearchOptions) ([]window.ScoredNode, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	results, err := r.store.Search(ctx, embeddings[0].Embedding, topK, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return results, nil
}

// RetrieveFromDocuments restricts retrieval to the given document IDs.
func (r *Retriever) RetrieveFromDocuments(ctx context.Context, query string, topK int, documentIDs []string) ([]window.ScoredNode, error) {
	opts := &SearchOptions{}
	if len(documentIDs) > 0 {
		opts.DocumentIDs = documentIDs
	}
	return r.Retrieve(ctx, query, topK, opts)
}
