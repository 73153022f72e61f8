package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/janvogt/notion-qa-mcp/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var askCmd = &cobra.Command{
	Use:   "ask <page-url> <question>",
	Short: "Index a Notion page and answer one question about it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if verbose {
			if logger, err = zap.NewDevelopment(); err != nil {
				return err
			}
		}

		svc, err := buildService(cmd, cfg, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		indexed := 0
		answer, err := svc.Ask(cmd.Context(), args[0], args[1], func(n int) {
			indexed += n
			fmt.Fprintf(out, "\r%s", progressStyle.Render(fmt.Sprintf("indexed %d pages and entries...", indexed)))
		})
		if indexed > 0 {
			fmt.Fprintln(out)
		}
		if err != nil {
			return err
		}

		if answer.NoContent {
			fmt.Fprintln(out, warnStyle.Render("No content found on this page."))
			return nil
		}
		fmt.Fprintln(out, answerStyle.Render("Answer:"))
		fmt.Fprintln(out, answer.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log traversal details to stderr")
	rootCmd.AddCommand(askCmd)
}
