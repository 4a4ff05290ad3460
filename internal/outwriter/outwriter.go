// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API
// for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTimeline prints a single MR timeline using the configured output format.
func (ow *OutWriter) WriteTimeline(result *schema.MRTimeline, cfg *contract.Config, duration time.Duration) error {
	return PrintTimelineResult(result, cfg, duration)
}

// WriteBatch prints a batch comparison result using the configured output format.
func (ow *OutWriter) WriteBatch(result *schema.BatchComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return PrintBatchResult(result, cfg, duration)
}

// GetMaxTableTitleWidth calculates the maximum width for MR titles in
// table output based on terminal width and table configuration.
func GetMaxTableTitleWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns: IID, Author, Type, AI marker,
	// cycle and four phase columns, tier, plus borders and padding.
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 12 {
		// Minimum reasonable title width
		return 12
	}
	if available > 60 {
		// Maximum title width to prevent overly wide tables
		return 60
	}
	return available
}
