package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/winnowhq/winnow/internal/document"
	"github.com/winnowhq/winnow/internal/pipeline"
)

var (
	ingestStore   string
	ingestReindex bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [location]...",
	Short: "Index documents into the vector store",
	Long: `Ingest loads documents from one or more locations, splits them into
per-sentence window nodes, embeds each sentence, and writes the nodes to
the vector store.

Locations:
  ./docs                     local directory (.txt and .md files)
  https://host/repo.git      git repository, cloned in memory
  github:owner/repo          GitHub readme and issues (GITHUB_TOKEN optional)

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  winnow ingest ./docs
  winnow ingest github:milvus-io/milvus --reindex
  winnow ingest ./notes https://github.com/user/wiki.git`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestStore, "store", "", "Vector store backend: memory or milvus")
	ingestCmd.Flags().BoolVar(&ingestReindex, "reindex", false, "Delete and re-index documents already in the store")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var (
		successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	)

	sources := make([]document.Source, 0, len(args))
	for _, location := range args {
		source, err := buildSource(location)
		if err != nil {
			return err
		}
		sources = append(sources, source)
	}

	p, err := newPipeline(ctx, func(pc *pipeline.Config) {
		if ingestStore != "" {
			pc.StoreType = ingestStore
		}
		if ingestReindex {
			pc.Index.ForceReindex = true
			pc.Index.SkipExisting = false
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	fmt.Println(contextStyle.Render(fmt.Sprintf("→ Ingesting %d location(s)...", len(args))))

	indexed, err := p.Ingest(ctx, sources...)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if indexed == 0 {
		fmt.Println(contextStyle.Render("Nothing to index (no documents, or all already indexed)"))
		return nil
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d sentence nodes", indexed)))
	return nil
}
