package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assessor",
	Short: "Adaptive knowledge checks for staff training",
	Long: "Assessor selects questions from an organization's knowledge base, " +
		"grades answers and tracks per-topic mastery for each learner.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the CLI with ctx as every command's context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ASSESSOR_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev, quiet, prod or off (overrides ASSESSOR_LOG)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
