package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/winnowhq/winnow/internal/document"
	"github.com/winnowhq/winnow/internal/pipeline"
	"github.com/winnowhq/winnow/internal/window"
)

var (
	searchTopK     int
	searchMerge    bool
	searchNoExpand bool
	searchStore    string
	searchFrom     []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve sentence windows matching a query",
	Long: `Search embeds the query, retrieves the most similar sentence nodes, and
prints each hit expanded to its surrounding sentence window.

With --from, the given locations are ingested first. That is the way to
use the in-memory store, which starts empty on every run.

Examples:
  winnow search "how is eviction handled"
  winnow search "error retry policy" --topk 10 --merge
  winnow search "login flow" --from ./docs --store memory`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchTopK, "topk", 0, "Number of similar sentences to retrieve (0 = config default)")
	searchCmd.Flags().BoolVar(&searchMerge, "merge", false, "Merge overlapping windows into single passages")
	searchCmd.Flags().BoolVar(&searchNoExpand, "no-expand", false, "Print the matched sentences without window expansion")
	searchCmd.Flags().StringVar(&searchStore, "store", "", "Vector store backend: memory or milvus")
	searchCmd.Flags().StringSliceVar(&searchFrom, "from", nil, "Location(s) to ingest before searching")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	var (
		headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
		textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
		contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	)

	p, err := newPipeline(ctx, func(pc *pipeline.Config) {
		if searchStore != "" {
			pc.StoreType = searchStore
		}
		pc.MergeWindows = searchMerge
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	if len(searchFrom) > 0 {
		sources := make([]document.Source, 0, len(searchFrom))
		for _, location := range searchFrom {
			source, err := buildSource(location)
			if err != nil {
				return err
			}
			sources = append(sources, source)
		}
		indexed, err := p.Ingest(ctx, sources...)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Println(contextStyle.Render(fmt.Sprintf("→ Indexed %d sentence nodes", indexed)))
	}

	var results []window.ScoredNode
	if searchNoExpand {
		results, err = p.Retrieve(ctx, query, searchTopK)
	} else {
		results, err = p.Search(ctx, query, searchTopK)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println(contextStyle.Render("No matching sentences found"))
		return nil
	}

	fmt.Println()
	for i, result := range results {
		fmt.Println(headerStyle.Render(fmt.Sprintf("Result %d", i+1)) +
			scoreStyle.Render(fmt.Sprintf("  (score %.3f)", result.Score)))
		if source := result.Node.Metadata["source"]; source != "" {
			fmt.Println(contextStyle.Render("Source: " + source))
		}

		fmt.Println(textStyle.Render(result.Node.Text))
		fmt.Println()
	}

	return nil
}
