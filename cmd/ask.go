package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/winnowhq/winnow/internal/document"
	"github.com/winnowhq/winnow/internal/pipeline"
)

var (
	askTopK    int
	askMerge   bool
	askStore   string
	askFrom    []string
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed documents",
	Long: `Ask embeds a natural language question, retrieves the most similar
sentences, expands each one to its surrounding window, and generates an
answer grounded in that context.

With --from, the given locations are ingested first.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and the LLM
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  winnow ask "What does the scheduler do when a node dies?"
  winnow ask "How are retries configured?" --from ./docs --store memory
  winnow ask "Who owns the billing module?" --topk 8 --merge --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askTopK, "topk", 0, "Number of similar sentences to retrieve for context (0 = config default)")
	askCmd.Flags().BoolVar(&askMerge, "merge", false, "Merge overlapping windows into single passages")
	askCmd.Flags().StringVar(&askStore, "store", "", "Vector store backend: memory or milvus")
	askCmd.Flags().StringSliceVar(&askFrom, "from", nil, "Location(s) to ingest before asking")
	askCmd.Flags().BoolVar(&askVerbose, "verbose", false, "Show detailed progress and sources")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	// Styling
	var (
		headerColor   = lipgloss.Color("#F780FF") // Bright pink
		questionColor = lipgloss.Color("#8BE9FD") // Cyan
		answerColor   = lipgloss.Color("#E9E9F4") // Light purple/white
		contextColor  = lipgloss.Color("#6272A4") // Muted purple
		successColor  = lipgloss.Color("#50FA7B") // Green
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	questionStyle := lipgloss.NewStyle().
		Foreground(questionColor).
		Italic(true)

	answerStyle := lipgloss.NewStyle().
		Foreground(answerColor)

	contextStyle := lipgloss.NewStyle().
		Foreground(contextColor).
		Italic(true)

	successStyle := lipgloss.NewStyle().
		Foreground(successColor)

	// Print question
	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	if askVerbose {
		fmt.Println(contextStyle.Render("→ Initializing pipeline..."))
	}

	p, err := newPipeline(ctx, func(pc *pipeline.Config) {
		if askStore != "" {
			pc.StoreType = askStore
		}
		if askTopK > 0 {
			pc.TopK = askTopK
		}
		pc.MergeWindows = askMerge
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	if len(askFrom) > 0 {
		if askVerbose {
			fmt.Println(contextStyle.Render("→ Ingesting sources..."))
		}
		sources := make([]document.Source, 0, len(askFrom))
		for _, location := range askFrom {
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
		if askVerbose {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d sentence nodes", indexed)))
		}
	}

	if askVerbose {
		fmt.Println(contextStyle.Render("→ Retrieving context and generating answer..."))
	}

	result, err := p.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}

	// Print answer
	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(result.Text)))
	fmt.Println()

	if askVerbose && len(result.Sources) > 0 {
		fmt.Println(contextStyle.Render("Sources: " + strings.Join(result.Sources, ", ")))
		fmt.Println()
	}

	return nil
}
