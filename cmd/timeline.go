package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mrpulse/mrpulse/core"
	"github.com/mrpulse/mrpulse/internal/contract"
)

// timelineCmd reconstructs the review timeline of one merge request.
var timelineCmd = &cobra.Command{
	Use:   "timeline <project> <iid>",
	Short: "Show the full review timeline of a single merge request.",
	Long: `Reconstruct the complete review lifecycle of one merge request.

Fetches the MR, its commits, notes, and pipelines, then rebuilds:
- A chronological event list with classified actors (author, human
  reviewer, AI reviewer, CI bot)
- Fine-grained segments between lifecycle key states
- The coarse Dev/Wait/Review/Merge phase breakdown with durations
  and percentage shares of the total cycle

Examples:
  # Analyze MR !123 in project 42
  mrpulse timeline 42 123

  # Use a project path and show every event
  mrpulse timeline group/repo 123 --events

  # Export the timeline as JSON
  mrpulse timeline 42 123 --output json --output-file mr123.json

  # Export the event list as Parquet
  mrpulse timeline 42 123 --output parquet --output-file mr123.parquet`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTimeline(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run timeline analysis", err)
		}
	},
}
