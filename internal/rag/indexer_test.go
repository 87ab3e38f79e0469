package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/winnowhq/winnow/internal/window"
)

// mockEmbedder implements Embedder for testing
type mockEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([]EmbeddingRecord, error)
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	m.calls++
	if m.embedFunc != nil {
		return m.embedFunc(ctx, texts)
	}
	// Default: deterministic embedding from text length
	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		records[i] = EmbeddingRecord{
			Text:      text,
			Embedding: []float32{float32(len(text)), 1, 0},
			Index:     i,
			Model:     "mock",
		}
	}
	return records, nil
}

func (m *mockEmbedder) GetModel() string  { return "mock" }
func (m *mockEmbedder) GetDimension() int { return 3 }

// mockVectorStore implements VectorStore for testing
type mockVectorStore struct {
	records     []NodeRecord
	insertFunc  func(ctx context.Context, records []NodeRecord) error
	searchFunc  func(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]window.ScoredNode, error)
	hasFunc     func(ctx context.Context, documentIDs []string) (map[string]bool, error)
	deleteFunc  func(ctx context.Context, documentIDs []string) error
	deleteCalls [][]string
}

func (m *mockVectorStore) Insert(ctx context.Context, records []NodeRecord) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, records)
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]window.ScoredNode, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryVector, topK, opts)
	}
	results := make([]window.ScoredNode, 0, topK)
	for i, r := range m.records {
		if i >= topK {
			break
		}
		results = append(results, window.ScoredNode{Node: r.Node, Score: 1 - float32(i)*0.1})
	}
	return results, nil
}

func (m *mockVectorStore) HasDocuments(ctx context.Context, documentIDs []string) (map[string]bool, error) {
	if m.hasFunc != nil {
		return m.hasFunc(ctx, documentIDs)
	}
	existing := make(map[string]bool)
	for _, r := range m.records {
		for _, id := range documentIDs {
			if r.Node.DocumentID == id {
				existing[id] = true
			}
		}
	}
	return existing, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, documentIDs []string) error {
	m.deleteCalls = append(m.deleteCalls, documentIDs)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, documentIDs)
	}
	return nil
}

func (m *mockVectorStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"row_count": len(m.records)}, nil
}

func (m *mockVectorStore) Close() error { return nil }

// Helper to create test nodes
func createTestNodes(docID string, count int) []window.Node {
	nodes := make([]window.Node, count)
	for i := range nodes {
		nodes[i] = window.Node{
			ID:            fmt.Sprintf("%s-n%d", docID, i),
			DocumentID:    docID,
			Text:          fmt.Sprintf("Sentence %d.", i),
			SequenceIndex: i,
			Metadata: map[string]string{
				window.DefaultWindowKey:       fmt.Sprintf("Window %d.", i),
				window.DefaultOriginalTextKey: fmt.Sprintf("Sentence %d.", i),
			},
		}
	}
	return nodes
}

func TestIndexNodes_EmptyInput(t *testing.T) {
	indexed, err := IndexNodes(context.Background(), nil, &mockEmbedder{}, &mockVectorStore{}, DefaultIndexOptions())
	if err != nil {
		t.Fatalf("Expected no error for empty input, got %v", err)
	}
	if indexed != 0 {
		t.Errorf("Expected 0 indexed nodes, got %d", indexed)
	}
}

func TestIndexNodes_NilCollaborators(t *testing.T) {
	nodes := createTestNodes("doc1", 2)

	if _, err := IndexNodes(context.Background(), nodes, nil, &mockVectorStore{}, DefaultIndexOptions()); err == nil {
		t.Error("Expected error for nil embedder")
	}
	if _, err := IndexNodes(context.Background(), nodes, &mockEmbedder{}, nil, DefaultIndexOptions()); err == nil {
		t.Error("Expected error for nil store")
	}
}

func TestIndexNodes_EmbedsSentenceNotWindow(t *testing.T) {
	var embedded []string
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			embedded = append(embedded, texts...)
			records := make([]EmbeddingRecord, len(texts))
			for i, text := range texts {
				records[i] = EmbeddingRecord{Text: text, Embedding: []float32{1, 2, 3}, Index: i}
			}
			return records, nil
		},
	}
	store := &mockVectorStore{}
	nodes := createTestNodes("doc1", 3)

	indexed, err := IndexNodes(context.Background(), nodes, embedder, store, IndexOptions{BatchSize: 10})
	if err != nil {
		t.Fatalf("Expected indexing to succeed, got %v", err)
	}
	if indexed != 3 {
		t.Errorf("Expected 3 indexed nodes, got %d", indexed)
	}

	for i, text := range embedded {
		if text != nodes[i].Text {
			t.Errorf("Expected embedded text %q, got %q", nodes[i].Text, text)
		}
		if text == nodes[i].Metadata[window.DefaultWindowKey] {
			t.Errorf("Expected the single sentence to be embedded, not the window")
		}
	}
}

func TestIndexNodes_Batching(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	nodes := createTestNodes("doc1", 5)

	indexed, err := IndexNodes(context.Background(), nodes, embedder, store, IndexOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("Expected indexing to succeed, got %v", err)
	}
	if indexed != 5 {
		t.Errorf("Expected 5 indexed nodes, got %d", indexed)
	}
	if embedder.calls != 3 {
		t.Errorf("Expected 3 embedding batches for 5 nodes at batch size 2, got %d", embedder.calls)
	}
	if len(store.records) != 5 {
		t.Errorf("Expected 5 stored records, got %d", len(store.records))
	}
}

func TestIndexNodes_SkipExisting(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	store.records = append(store.records, NodeRecord{Node: createTestNodes("doc1", 1)[0], Embedding: []float32{1, 1, 1}})

	nodes := append(createTestNodes("doc1", 2), createTestNodes("doc2", 2)...)

	indexed, err := IndexNodes(context.Background(), nodes, embedder, store, IndexOptions{BatchSize: 10, SkipExisting: true})
	if err != nil {
		t.Fatalf("Expected indexing to succeed, got %v", err)
	}
	if indexed != 2 {
		t.Errorf("Expected only doc2 nodes to be indexed, got %d", indexed)
	}
}

func TestIndexNodes_ForceReindexDeletesFirst(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	nodes := createTestNodes("doc1", 2)

	_, err := IndexNodes(context.Background(), nodes, embedder, store, IndexOptions{BatchSize: 10, ForceReindex: true})
	if err != nil {
		t.Fatalf("Expected indexing to succeed, got %v", err)
	}

	if len(store.deleteCalls) != 1 {
		t.Fatalf("Expected one delete call, got %d", len(store.deleteCalls))
	}
	if len(store.deleteCalls[0]) != 1 || store.deleteCalls[0][0] != "doc1" {
		t.Errorf("Expected delete for doc1, got %v", store.deleteCalls[0])
	}
}

func TestIndexNodes_EmbedderFailure(t *testing.T) {
	wantErr := errors.New("embedding unavailable")
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			return nil, wantErr
		},
	}
	store := &mockVectorStore{}

	_, err := IndexNodes(context.Background(), createTestNodes("doc1", 2), embedder, store, IndexOptions{BatchSize: 10})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected embedder error to propagate, got %v", err)
	}
	if len(store.records) != 0 {
		t.Errorf("Expected no records stored after embedding failure, got %d", len(store.records))
	}
}
