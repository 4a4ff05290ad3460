// Package cmd defines the command-line interface for mrpulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("base-url", contract.DefaultBaseURL, "GitLab API base URL")
	rootCmd.PersistentFlags().String("token", "", "GitLab API token (or MRPULSE_TOKEN env var)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Decorate table output with emojis (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of timelineCmd to Viper
	timelineCmd.Flags().Bool("events", false, "Print the full reconstructed event list")
	if err := viper.BindPFlags(timelineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding timeline flags", err)
	}

	// Bind all flags of batchCmd to Viper
	batchCmd.Flags().String("iids", "", "Comma-separated MR iids (alternative to positional args)")
	batchCmd.Flags().String("sort", "", "Sort field: iid, created_at, cycle_days, dev_days, wait_days, review_days, merge_days, commits, ai_reviews, human_comments")
	batchCmd.Flags().String("order", "asc", "Sort order: asc or desc")
	batchCmd.Flags().String("author", "", "Filter rows by author (case-insensitive substring)")
	batchCmd.Flags().String("status", "", "Filter rows by MR state (e.g. merged, opened)")
	batchCmd.Flags().String("min-cycle-days", "", "Keep rows with at least this cycle time in days")
	batchCmd.Flags().String("max-cycle-days", "", "Keep rows with at most this cycle time in days")
	batchCmd.Flags().String("created-after", "", "Keep rows created on or after this date (YYYY-MM-DD)")
	batchCmd.Flags().String("created-before", "", "Keep rows created on or before this date (YYYY-MM-DD)")
	batchCmd.Flags().StringArray("phase-filter", nil, "Phase bound like 'review-percent-min=50' or 'wait-days-max=2' (repeatable)")
	batchCmd.Flags().Bool("ai-only", false, "Keep only MRs with at least one AI review")
	if err := viper.BindPFlags(batchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding batch flags", err)
	}
}
