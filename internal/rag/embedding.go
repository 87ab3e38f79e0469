package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Common errors for embedding operations
var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY environment variable not set")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// EmbeddingRecord represents a single text embedding with metadata
type EmbeddingRecord struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
	Model     string    `json:"model"`
}

// Embedder defines the interface for generating text embeddings
type Embedder interface {
	// Embed generates embeddings for the provided texts
	Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error)

	// GetModel returns the embedding model identifier
	GetModel() string

	// GetDimension returns the embedding vector dimension
	GetDimension() int
}

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	// Model is the embedding model identifier
	Model string

	// Dimension is the requested vector dimension
	Dimension int

	// APIKey overrides the OPENAI_API_KEY environment variable
	APIKey string

	// BatchSize caps how many texts go into one API request
	BatchSize int
}

// DefaultEmbedderConfig returns sensible embedder defaults. Sentence-sized
// inputs embed well at the small model's native dimension.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Model:     "text-embedding-3-small",
		Dimension: 1536,
		BatchSize: 128,
	}
}

// OpenAIEmbedder implements the Embedder interface using OpenAI's API
type OpenAIEmbedder struct {
	client openai.Client
	config EmbedderConfig
}

// NewOpenAIEmbedder creates a new OpenAI embedder instance
func NewOpenAIEmbedder(config EmbedderConfig) (*OpenAIEmbedder, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.Model == "" {
		config.Model = DefaultEmbedderConfig().Model
	}
	if config.Dimension <= 0 {
		config.Dimension = DefaultEmbedderConfig().Dimension
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultEmbedderConfig().BatchSize
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIEmbedder{
		client: client,
		config: config,
	}, nil
}

// GetModel returns the embedding model identifier
func (e *OpenAIEmbedder) GetModel() string {
	return e.config.Model
}

// GetDimension returns the embedding vector dimension
func (e *OpenAIEmbedder) GetDimension() int {
	return e.config.Dimension
}

// Embed generates embeddings for the provided texts, batching requests so
// large node sets never exceed per-request input limits.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	records := make([]EmbeddingRecord, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedBatch(ctx, texts[start:end], start)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string, offset int) ([]EmbeddingRecord, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.config.Model,
		Dimensions:     openai.Int(int64(e.config.Dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	records := make([]EmbeddingRecord, len(resp.Data))
	for i, data := range resp.Data {
		embedding := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			embedding[j] = float32(val)
		}

		idx := int(data.Index)
		records[i] = EmbeddingRecord{
			Text:      texts[idx],
			Embedding: embedding,
			Index:     offset + idx,
			Model:     e.config.Model,
		}
	}

	return records, nil
}
