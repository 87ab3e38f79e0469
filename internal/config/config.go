// Package config loads YAML configuration files and maps them onto
// pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/winnowhq/winnow/internal/answer"
	"github.com/winnowhq/winnow/internal/pipeline"
	"github.com/winnowhq/winnow/internal/rag"
	"github.com/winnowhq/winnow/internal/window"
)

// WindowConfig configures sentence segmentation and window assembly.
// Size is a pointer so an explicit zero (plain per-sentence chunking)
// survives the unset-field defaulting.
type WindowConfig struct {
	Size            *int     `yaml:"size"`
	WindowKey       string   `yaml:"window_key,omitempty"`
	OriginalTextKey string   `yaml:"original_text_key,omitempty"`
	Abbreviations   []string `yaml:"abbreviations,omitempty"`
}

// EmbedderConfig configures the OpenAI embedder.
type EmbedderConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// MilvusConfig contains connection details for a Milvus vector store.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Metric     string `yaml:"metric,omitempty"`
}

// StoreConfig selects and configures the vector store implementation.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	Milvus *MilvusConfig `yaml:"milvus,omitempty"`
}

// RetrievalConfig controls query-time behavior.
type RetrievalConfig struct {
	TopK         int  `yaml:"top_k"`
	MergeWindows bool `yaml:"merge_windows"`
}

// AnswerConfig configures answer generation.
type AnswerConfig struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Window    WindowConfig    `yaml:"window"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Store     StoreConfig     `yaml:"store"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./winnow.yaml first, then ~/.config/winnow/config.yaml.
// If neither exists, it returns defaults without writing anything.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "winnow.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return defaultConfig(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Pipeline converts the application config into a pipeline configuration,
// filling unset fields from pipeline defaults.
func (c *AppConfig) Pipeline() pipeline.Config {
	pc := pipeline.DefaultConfig()

	size := window.DefaultWindowSize
	if c.Window.Size != nil {
		size = *c.Window.Size
	}
	pc.Window = window.ParserConfig{
		WindowSize:      size,
		WindowKey:       c.Window.WindowKey,
		OriginalTextKey: c.Window.OriginalTextKey,
	}
	pc.ExtraAbbreviations = c.Window.Abbreviations

	pc.Embedder = rag.EmbedderConfig{
		Model:     c.Embedder.Model,
		Dimension: c.Embedder.Dimension,
		BatchSize: c.Embedder.BatchSize,
	}

	pc.StoreType = c.Store.Type
	if c.Store.Milvus != nil {
		milvus := rag.DefaultMilvusConfig()
		if c.Store.Milvus.Address != "" {
			milvus.Address = c.Store.Milvus.Address
		}
		if c.Store.Milvus.Collection != "" {
			milvus.CollectionName = c.Store.Milvus.Collection
		}
		if c.Store.Milvus.Metric != "" {
			milvus.MetricType = c.Store.Milvus.Metric
		}
		pc.Milvus = milvus
	}

	pc.TopK = c.Retrieval.TopK
	pc.MergeWindows = c.Retrieval.MergeWindows

	pc.LLM = answer.LLMConfig{
		Model:       c.Answer.Model,
		Temperature: c.Answer.Temperature,
		MaxTokens:   c.Answer.MaxTokens,
	}

	return pc
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "winnow", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	embedder := rag.DefaultEmbedderConfig()
	llm := answer.DefaultLLMConfig()
	size := window.DefaultWindowSize
	return &AppConfig{
		Window: WindowConfig{
			Size:            &size,
			WindowKey:       window.DefaultWindowKey,
			OriginalTextKey: window.DefaultOriginalTextKey,
		},
		Embedder: EmbedderConfig{
			Model:     embedder.Model,
			Dimension: embedder.Dimension,
			BatchSize: embedder.BatchSize,
		},
		Store: StoreConfig{Type: pipeline.StoreMemory},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Answer: AnswerConfig{
			Model:       llm.Model,
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	defaults := defaultConfig()
	if cfg.Window.Size == nil {
		cfg.Window.Size = defaults.Window.Size
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = defaults.Embedder.Model
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = defaults.Embedder.Dimension
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = defaults.Embedder.BatchSize
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = defaults.Store.Type
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.Answer.Model == "" {
		cfg.Answer.Model = defaults.Answer.Model
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = defaults.Answer.MaxTokens
	}
}
