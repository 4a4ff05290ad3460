package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/internal/glclient"
	"github.com/mrpulse/mrpulse/internal/outwriter"
	"github.com/mrpulse/mrpulse/schema"
)

// ExecuteTimeline reconstructs and prints the timeline of a single MR.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	client := glclient.New(cfg.BaseURL, cfg.Token)
	timeline, err := AnalyzeMR(ctx, client, cfg, cfg.ProjectID, cfg.MRIIDs[0])
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteTimeline(timeline, cfg, duration)
}

// ExecuteBatch analyzes all requested MRs and prints the comparison result.
func ExecuteBatch(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	client := glclient.New(cfg.BaseURL, cfg.Token)

	input := &schema.BatchInput{
		ProjectID: cfg.ProjectID,
		MRIIDs:    cfg.MRIIDs,
		Filter:    cfg.Filter,
		Sort:      cfg.Sort,
		Limit:     cfg.ResultLimit,
	}

	// Progress goes to stderr so piped stdout output stays parseable.
	progress := func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rAnalyzed %d/%d MRs", done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	result, err := AnalyzeBatch(ctx, client, cfg, input, progress)
	if err != nil {
		return err
	}
	if cfg.AIOnly {
		FilterAIReviewedRows(result)
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteBatch(result, cfg, duration)
}
