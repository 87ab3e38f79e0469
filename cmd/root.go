package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "winnow",
	Short: "Winnow - Sentence-window retrieval over your documents",
	Long: `Winnow splits documents into per-sentence nodes, retrieves the sentences
most similar to a query, and expands each hit back into its surrounding
sentence window before answering.

Sources can be local directories, git repositories, or GitHub projects.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a winnow config file (default: ./winnow.yaml)")
}
