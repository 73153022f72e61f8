package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notion-qa-mcp",
	Short: "Memoryless question answering over Notion pages",
	Long: `notion-qa-mcp recursively indexes a Notion page — including nested
subpages and embedded databases — into one flat text corpus and answers
questions about it with a single stateless model query. Nothing is cached
between questions: every ask re-walks the page from scratch.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
