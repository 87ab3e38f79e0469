// Package pipeline wires the sentence-window components into an
// end-to-end flow: document loading, window node parsing, indexing,
// retrieval, context expansion, and answer generation.
package pipeline

import (
	"context"
	"fmt"

	"github.com/winnowhq/winnow/internal/answer"
	"github.com/winnowhq/winnow/internal/document"
	"github.com/winnowhq/winnow/internal/rag"
	"github.com/winnowhq/winnow/internal/window"
)

// Store type identifiers
const (
	StoreMemory = "memory"
	StoreMilvus = "milvus"
)

// Config holds configuration for the full pipeline.
type Config struct {
	// Window controls node parsing
	Window window.ParserConfig

	// ExtraAbbreviations extends the segmenter's exception list
	ExtraAbbreviations []string

	// TopK is the number of nodes retrieved per query
	TopK int

	// MergeWindows merges overlapping windows at expansion time
	MergeWindows bool

	// StoreType selects the vector store backend ("memory" or "milvus")
	StoreType string

	// Embedder configures the OpenAI embedder
	Embedder rag.EmbedderConfig

	// Milvus configures the Milvus store when StoreType is "milvus"
	Milvus rag.MilvusConfig

	// LLM configures answer generation
	LLM answer.LLMConfig

	// Index controls batch size and re-indexing behavior
	Index rag.IndexOptions
}

// DefaultConfig returns sensible defaults for the pipeline.
func DefaultConfig() Config {
	return Config{
		Window:    window.DefaultParserConfig(),
		TopK:      5,
		StoreType: StoreMemory,
		Embedder:  rag.DefaultEmbedderConfig(),
		Milvus:    rag.DefaultMilvusConfig(),
		LLM:       answer.DefaultLLMConfig(),
		Index:     rag.DefaultIndexOptions(),
	}
}

// Pipeline orchestrates ingestion and querying over window nodes.
type Pipeline struct {
	config    Config
	parser    *window.NodeParser
	expander  *window.Expander
	embedder  rag.Embedder
	store     rag.VectorStore
	retriever *rag.Retriever
	answerer  *answer.Answerer
}

// New creates a pipeline from configuration, constructing all
// collaborators. Configuration errors surface here, before any document
// or query is processed.
func New(ctx context.Context, config Config) (*Pipeline, error) {
	segmenter := window.NewPunctSegmenter(config.ExtraAbbreviations...)
	parser, err := window.NewNodeParser(config.Window, segmenter)
	if err != nil {
		return nil, fmt.Errorf("failed to create node parser: %w", err)
	}

	expander := window.NewExpander(window.ExpanderConfig{
		TargetKey:  config.Window.WindowKey,
		WindowSize: config.Window.WindowSize,
	})

	embedder, err := rag.NewOpenAIEmbedder(config.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := newStore(ctx, config, embedder.GetDimension())
	if err != nil {
		return nil, err
	}

	retriever, err := rag.NewRetriever(embedder, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	llm, err := answer.NewOpenAILLM(config.LLM)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}
	answerer, err := answer.NewAnswerer(llm, config.LLM)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create answerer: %w", err)
	}

	return &Pipeline{
		config:    config,
		parser:    parser,
		expander:  expander,
		embedder:  embedder,
		store:     store,
		retriever: retriever,
		answerer:  answerer,
	}, nil
}

func newStore(ctx context.Context, config Config, dimension int) (rag.VectorStore, error) {
	switch config.StoreType {
	case StoreMilvus:
		milvusConfig := config.Milvus
		milvusConfig.Dimension = dimension
		milvusConfig.WindowKey = config.Window.WindowKey
		milvusConfig.OriginalTextKey = config.Window.OriginalTextKey
		store, err := rag.NewMilvusStore(ctx, milvusConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Milvus store: %w", err)
		}
		return store, nil
	case StoreMemory, "":
		store, err := rag.NewMemoryStore(dimension)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", config.StoreType)
	}
}

// Ingest loads documents from the given sources, parses them into window
// nodes, and indexes the nodes. Returns the number of nodes indexed.
func (p *Pipeline) Ingest(ctx context.Context, sources ...document.Source) (int, error) {
	var documents []document.Document
	for _, source := range sources {
		docs, err := source.Load(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to load from %s source: %w", source.Name(), err)
		}
		documents = append(documents, docs...)
	}

	nodes := p.parser.ParseAll(documents)
	if len(nodes) == 0 {
		return 0, nil
	}

	indexed, err := rag.IndexNodes(ctx, nodes, p.embedder, p.store, p.config.Index)
	if err != nil {
		return indexed, fmt.Errorf("failed to index nodes: %w", err)
	}
	return indexed, nil
}

// Retrieve returns the topK most similar sentence nodes without window
// expansion.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]window.ScoredNode, error) {
	if topK <= 0 {
		topK = p.config.TopK
	}
	return p.retriever.Retrieve(ctx, query, topK, nil)
}

// Search retrieves the topK most similar nodes for the query and expands
// each one to its sentence window.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]window.ScoredNode, error) {
	results, err := p.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if p.config.MergeWindows {
		return p.expander.ExpandMerged(results), nil
	}
	return p.expander.Expand(results), nil
}

// Ask retrieves and expands context for the question, then generates an
// answer with the configured LLM.
func (p *Pipeline) Ask(ctx context.Context, question string) (*answer.Answer, error) {
	contexts, err := p.Search(ctx, question, p.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	return p.answerer.Answer(ctx, question, contexts)
}

// Stats returns vector store statistics.
func (p *Pipeline) Stats(ctx context.Context) (map[string]interface{}, error) {
	return p.store.GetStats(ctx)
}

// Close releases the pipeline's store resources.
func (p *Pipeline) Close() error {
	return p.store.Close()
}
