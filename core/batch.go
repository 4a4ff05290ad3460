// Package core implements the timeline reconstruction and batch
// statistics engines.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

// AnalyzeBatch runs the timeline analysis over every requested MR with a
// bounded worker pool and assembles the comparison result.
//
// Per-MR failures are captured on the affected row and never abort
// sibling analyses; a batch with partial failures still returns a usable
// result. Row order always matches the input iid order: results are
// collected by index, not by arrival.
func AnalyzeBatch(ctx context.Context, client contract.PlatformClient, cfg *contract.Config, input *schema.BatchInput, onProgress contract.ProgressFunc) (*schema.BatchComparisonResult, error) {
	if err := ValidateBatchInput(input); err != nil {
		return nil, err
	}

	rows := fanOut(ctx, client, cfg, input, onProgress)

	// Post-processing happens on the collected rows only; the fan-out
	// tasks share no mutable state.
	rows, filterStats := applyFilters(rows, input.Filter)
	sortRows(rows, input.Sort)
	if input.Limit > 0 && len(rows) > input.Limit {
		rows = rows[:input.Limit]
	}

	return &schema.BatchComparisonResult{
		Rows:             rows,
		Summary:          ComputeBatchSummary(rows),
		PhaseFilterStats: filterStats,
		Metadata: schema.BatchMetadata{
			ProjectID:     input.ProjectID,
			RequestedIIDs: append([]int(nil), input.MRIIDs...),
			GeneratedAt:   time.Now().UTC(),
			Workers:       cfg.Workers,
		},
	}, nil
}

// fanOut processes all MR iids in parallel using a worker pool and
// collects the rows by input index.
func fanOut(ctx context.Context, client contract.PlatformClient, cfg *contract.Config, input *schema.BatchInput, onProgress contract.ProgressFunc) []schema.MRComparisonRow {
	total := len(input.MRIIDs)
	rows := make([]schema.MRComparisonRow, total)

	indexCh := make(chan int, total)
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	done := 0
	reportProgress := func() {
		if onProgress == nil {
			return
		}
		progressMu.Lock()
		done++
		current := done
		progressMu.Unlock()
		onProgress(current, total)
	}

	workers := cfg.Workers
	if workers > total {
		workers = total
	}

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for idx := range indexCh {
				// Each worker writes to a unique index, which is safe.
				rows[idx] = analyzeOne(ctx, client, cfg, input.ProjectID, input.MRIIDs[idx])
				reportProgress()
			}
		})
	}

	for idx := range input.MRIIDs {
		indexCh <- idx
	}
	close(indexCh)
	wg.Wait()

	return rows
}

// analyzeOne settles a single MR analysis into a row, recovering any
// per-MR error locally instead of propagating it to siblings.
func analyzeOne(ctx context.Context, client contract.PlatformClient, cfg *contract.Config, projectID string, iid int) schema.MRComparisonRow {
	timeline, err := AnalyzeMR(ctx, client, cfg, projectID, iid)
	if err != nil {
		return schema.MRComparisonRow{IID: iid, Error: err.Error()}
	}
	return BuildComparisonRow(timeline, cfg.Types)
}

// BuildComparisonRow flattens one timeline into its batch reporting row.
// The row never round-trips back into a timeline.
func BuildComparisonRow(t *schema.MRTimeline, th schema.TypeThresholds) schema.MRComparisonRow {
	cycleDays := schema.SecondsToDays(t.CycleTimeSeconds)
	return schema.MRComparisonRow{
		IID:       t.MR.IID,
		Title:     t.MR.Title,
		Author:    t.MR.Author,
		Status:    t.MR.State,
		CreatedAt: t.MR.CreatedAt,
		MergedAt:  t.MR.MergedAt,

		Commits:       t.Summary.Commits,
		AIReviews:     t.Summary.AIReviews,
		HumanComments: t.Summary.HumanComments,
		TotalComments: t.Summary.Comments.Human + t.Summary.Comments.AI + t.Summary.Comments.Author + t.Summary.Comments.CIBot,
		Reviewers:     t.Summary.Reviewers,

		CycleDays:  cycleDays,
		DevDays:    schema.SecondsToDays(t.PhaseDurationSeconds(schema.PhaseDev)),
		WaitDays:   schema.SecondsToDays(t.PhaseDurationSeconds(schema.PhaseWait)),
		ReviewDays: schema.SecondsToDays(t.PhaseDurationSeconds(schema.PhaseReview)),
		MergeDays:  schema.SecondsToDays(t.PhaseDurationSeconds(schema.PhaseMerge)),

		DevPercent:    t.PhasePercentage(schema.PhaseDev),
		WaitPercent:   t.PhasePercentage(schema.PhaseWait),
		ReviewPercent: t.PhasePercentage(schema.PhaseReview),
		MergePercent:  t.PhasePercentage(schema.PhaseMerge),

		HasAIReview: t.Summary.AIReviews > 0,
		MRType:      ClassifyMRType(t, th),
		DORATier:    ClassifyDORATier(cycleDays),
	}
}

// FilterAIReviewedRows keeps only rows with at least one AI review and
// recomputes the summary. The summary is not kept in sync with row
// mutation automatically, so the recomputation here is explicit.
func FilterAIReviewedRows(result *schema.BatchComparisonResult) {
	kept := make([]schema.MRComparisonRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		if row.Error != "" || row.HasAIReview {
			kept = append(kept, row)
		}
	}
	result.Rows = kept
	result.Summary = ComputeBatchSummary(result.Rows)
}
