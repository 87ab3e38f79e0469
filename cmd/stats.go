package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/winnowhq/winnow/internal/pipeline"
)

var statsStore string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector store statistics",
	Long: `Stats connects to the configured vector store and prints collection
statistics such as the number of indexed sentence nodes.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsStore, "store", "", "Vector store backend: memory or milvus")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var (
		headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
		valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	)

	p, err := newPipeline(ctx, func(pc *pipeline.Config) {
		if statsStore != "" {
			pc.StoreType = statsStore
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	stats, err := p.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Println(headerStyle.Render("Store statistics:"))
	for _, key := range keys {
		fmt.Printf("  %s %s\n", keyStyle.Render(key+":"), valueStyle.Render(fmt.Sprintf("%v", stats[key])))
	}
	return nil
}
