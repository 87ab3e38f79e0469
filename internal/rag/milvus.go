package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/winnowhq/winnow/internal/window"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (must match the embedder)
	MetricType     string // Similarity metric (default: "COSINE")

	// WindowKey and OriginalTextKey are the node metadata keys mapped to
	// the window and original_text columns. Default to the parser's keys.
	WindowKey       string
	OriginalTextKey string

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "winnow_nodes"
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      1536, // text-embedding-3-small
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore using Milvus. Each row is one window
// node; the window and original-text attributes are persisted as their own
// columns so they survive the round trip through the index.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the node collection exists
// with the proper schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	if config.WindowKey == "" {
		config.WindowKey = window.DefaultWindowKey
	}
	if config.OriginalTextKey == "" {
		config.OriginalTextKey = window.DefaultOriginalTextKey
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil
	}

	idField := func(name string) *entity.Field {
		return &entity.Field{
			Name:     name,
			DataType: entity.FieldTypeVarChar,
			TypeParams: map[string]string{
				"max_length": "64",
			},
		}
	}
	textField := func(name string) *entity.Field {
		return &entity.Field{
			Name:     name,
			DataType: entity.FieldTypeVarChar,
			TypeParams: map[string]string{
				"max_length": "65535",
			},
		}
	}

	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			idField("node_id"),
			idField("document_id"),
			textField("text"),
			textField("window"),
			textField("original_text"),
			{
				Name:     "sequence_index",
				DataType: entity.FieldTypeInt64,
			},
			idField("prev_id"),
			idField("next_id"),
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds node records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []NodeRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	nodeIDs := make([]string, len(records))
	documentIDs := make([]string, len(records))
	texts := make([]string, len(records))
	windows := make([]string, len(records))
	originals := make([]string, len(records))
	sequences := make([]int64, len(records))
	prevIDs := make([]string, len(records))
	nextIDs := make([]string, len(records))
	embeddings := make([][]float32, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d for node %s",
				ErrInvalidDimension, m.config.Dimension, len(record.Embedding), record.Node.ID)
		}
		node := record.Node
		nodeIDs[i] = node.ID
		documentIDs[i] = node.DocumentID
		texts[i] = node.Text
		windows[i] = node.Metadata[m.config.WindowKey]
		originals[i] = node.Metadata[m.config.OriginalTextKey]
		sequences[i] = int64(node.SequenceIndex)
		prevIDs[i] = node.PrevID
		nextIDs[i] = node.NextID
		embeddings[i] = record.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("node_id", nodeIDs),
		entity.NewColumnVarChar("document_id", documentIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("window", windows),
		entity.NewColumnVarChar("original_text", originals),
		entity.NewColumnInt64("sequence_index", sequences),
		entity.NewColumnVarChar("prev_id", prevIDs),
		entity.NewColumnVarChar("next_id", nextIDs),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}

	return nil
}

// Search performs top-K similarity search with optional document filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]window.ScoredNode, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	expr := documentFilterExpr(opts)

	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{
		"node_id", "document_id", "text", "window", "original_text",
		"sequence_index", "prev_id", "next_id",
	}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []window.ScoredNode{}, nil
	}

	scored := make([]window.ScoredNode, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		node := window.Node{
			Metadata: make(map[string]string, 2),
		}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "node_id":
				node.ID = field.(*entity.ColumnVarChar).Data()[i]
			case "document_id":
				node.DocumentID = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				node.Text = field.(*entity.ColumnVarChar).Data()[i]
			case "window":
				node.Metadata[m.config.WindowKey] = field.(*entity.ColumnVarChar).Data()[i]
			case "original_text":
				node.Metadata[m.config.OriginalTextKey] = field.(*entity.ColumnVarChar).Data()[i]
			case "sequence_index":
				node.SequenceIndex = int(field.(*entity.ColumnInt64).Data()[i])
			case "prev_id":
				node.PrevID = field.(*entity.ColumnVarChar).Data()[i]
			case "next_id":
				node.NextID = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		scored = append(scored, window.ScoredNode{
			Node:  node,
			Score: results[0].Scores[i],
		})
	}

	return scored, nil
}

// HasDocuments reports which document IDs have nodes in the collection
func (m *MilvusStore) HasDocuments(ctx context.Context, documentIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(documentIDs))
	if len(documentIDs) == 0 {
		return existing, nil
	}

	expr := inExpr("document_id", documentIDs)
	results, err := m.client.Query(ctx, m.config.CollectionName, nil, expr, []string{"document_id"})
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	for _, column := range results {
		if column.Name() != "document_id" {
			continue
		}
		varchar, ok := column.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		for _, id := range varchar.Data() {
			existing[id] = true
		}
	}

	return existing, nil
}

// Delete removes all nodes belonging to the given documents
func (m *MilvusStore) Delete(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	expr := inExpr("document_id", documentIDs)
	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}

	return nil
}

// GetStats returns collection statistics
func (m *MilvusStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	result := make(map[string]interface{}, len(stats)+1)
	for k, v := range stats {
		result[k] = v
	}
	result["collection"] = m.config.CollectionName

	return result, nil
}

// Close releases the Milvus connection
func (m *MilvusStore) Close() error {
	return m.client.Close()
}

// documentFilterExpr builds a Milvus boolean expression from search options
func documentFilterExpr(opts *SearchOptions) string {
	if opts == nil || len(opts.DocumentIDs) == 0 {
		return ""
	}
	return inExpr("document_id", opts.DocumentIDs)
}

func inExpr(field string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%s in [%s]", field, strings.Join(quoted, ", "))
}
