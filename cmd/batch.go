package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mrpulse/mrpulse/core"
	"github.com/mrpulse/mrpulse/internal/contract"
)

// batchCmd analyzes many merge requests and compares them.
var batchCmd = &cobra.Command{
	Use:   "batch <project> [iid...]",
	Short: "Compare review cycles across many merge requests.",
	Long: `Analyze multiple merge requests in parallel and compare their review cycles.

Each MR is analyzed independently; failures on individual MRs are
reported per row and never abort the batch. The result includes:
- One comparison row per MR (cycle time, phase splits, comment counts)
- Aggregate percentiles (p50/p75/p90/p95) over the successful rows
- MR type grouping (standard, draft, active development) with an
  AI-review cross tabulation
- DORA-style cycle time tiers

Examples:
  # Compare three MRs in project 42
  mrpulse batch 42 101 102 103

  # Same via the --iids flag, sorted by cycle time
  mrpulse batch 42 --iids 101,102,103 --sort cycle_days --order desc

  # Only merged MRs where review dominated the cycle
  mrpulse batch 42 --iids 101,102,103 --status merged --phase-filter review-percent-min=50

  # Keep AI-reviewed MRs and export to CSV
  mrpulse batch 42 --iids 101,102,103 --ai-only --output csv --output-file batch.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run batch analysis", err)
		}
	},
}
