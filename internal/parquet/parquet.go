// Package parquet provides data structures and functions for exporting
// MR analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mrpulse/mrpulse/schema"
)

// ComparisonRow is one MR's flattened batch row in Parquet form.
// The schema is derived from the struct tags.
type ComparisonRow struct {
	// ProjectID is the project the MR belongs to
	ProjectID string `parquet:"project_id,snappy"`

	// IID is the MR's project-scoped identifier
	IID int32 `parquet:"iid,snappy"`

	// Title is the MR title at analysis time
	Title string `parquet:"title,snappy"`

	// Author is the MR author's username
	Author string `parquet:"author,snappy"`

	// Status is the platform MR state, e.g. merged or opened
	Status string `parquet:"status,snappy"`

	// CreatedAt is when the MR was created (TIMESTAMP, nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// MergedAt is when the MR was merged (nullable)
	MergedAt *time.Time `parquet:"merged_at,optional,snappy"`

	// Commits is the number of commit events on the timeline
	Commits int32 `parquet:"commits,snappy"`

	// AIReviews is the number of AI review events before approval
	AIReviews int32 `parquet:"ai_reviews,snappy"`

	// HumanComments is the number of human plus author comments
	HumanComments int32 `parquet:"human_comments,snappy"`

	// Reviewers is the number of distinct reviewers before approval
	Reviewers int32 `parquet:"reviewers,snappy"`

	// CycleDays is the total cycle time in fractional days
	CycleDays float64 `parquet:"cycle_days,snappy"`

	// DevDays through MergeDays are per-phase durations in fractional days
	DevDays    float64 `parquet:"dev_days,snappy"`
	WaitDays   float64 `parquet:"wait_days,snappy"`
	ReviewDays float64 `parquet:"review_days,snappy"`
	MergeDays  float64 `parquet:"merge_days,snappy"`

	// DevPercent through MergePercent are per-phase shares of the cycle (0-100)
	DevPercent    float64 `parquet:"dev_percent,snappy"`
	WaitPercent   float64 `parquet:"wait_percent,snappy"`
	ReviewPercent float64 `parquet:"review_percent,snappy"`
	MergePercent  float64 `parquet:"merge_percent,snappy"`

	// HasAIReview indicates whether at least one AI review occurred
	HasAIReview bool `parquet:"has_ai_review,snappy"`

	// MRType is the behavioral classification, e.g. standard or draft
	MRType string `parquet:"mr_type,snappy"`

	// DORATier is the cycle-time performance tier
	DORATier string `parquet:"dora_tier,snappy"`

	// AnalysisError is set for rows whose analysis failed (nullable)
	AnalysisError *string `parquet:"analysis_error,optional,snappy"`
}

// TimelineEvent is one reconstructed timeline event in Parquet form.
type TimelineEvent struct {
	// ProjectID is the project the MR belongs to
	ProjectID string `parquet:"project_id,snappy"`

	// IID is the MR's project-scoped identifier
	IID int32 `parquet:"iid,snappy"`

	// Sequence is the contiguous event position starting at 1
	Sequence int32 `parquet:"sequence,snappy"`

	// Timestamp is when the event occurred (TIMESTAMP, nanosecond precision)
	Timestamp time.Time `parquet:"timestamp,snappy"`

	// ActorUsername identifies who performed the event
	ActorUsername string `parquet:"actor_username,snappy"`

	// ActorRole is the contextual role on this event
	ActorRole string `parquet:"actor_role,snappy"`

	// IsAIBot indicates an AI reviewer actor
	IsAIBot bool `parquet:"is_ai_bot,snappy"`

	// EventType is the timeline event kind
	EventType string `parquet:"event_type,snappy"`

	// SHA is the commit id for commit events (nullable)
	SHA *string `parquet:"sha,optional,snappy"`

	// IntervalToNextSeconds is the gap to the next event (nullable)
	IntervalToNextSeconds *float64 `parquet:"interval_to_next_seconds,optional,snappy"`
}

// WriteBatchRowsParquet writes a slice of ComparisonRow structs to a Parquet file.
func WriteBatchRowsParquet(data []ComparisonRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTimelineEventsParquet writes a slice of TimelineEvent structs to a Parquet file.
func WriteTimelineEventsParquet(data []TimelineEvent, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates the output file and streams all records through a
// generic writer with struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertComparisonRows converts a batch result to Parquet rows.
func ConvertComparisonRows(result *schema.BatchComparisonResult) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(result.Rows))
	for i := range result.Rows {
		r := &result.Rows[i]
		out := ComparisonRow{
			ProjectID:     result.Metadata.ProjectID,
			IID:           int32(r.IID),
			Title:         r.Title,
			Author:        r.Author,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt,
			MergedAt:      r.MergedAt,
			Commits:       int32(r.Commits),
			AIReviews:     int32(r.AIReviews),
			HumanComments: int32(r.HumanComments),
			Reviewers:     int32(r.Reviewers),
			CycleDays:     r.CycleDays,
			DevDays:       r.DevDays,
			WaitDays:      r.WaitDays,
			ReviewDays:    r.ReviewDays,
			MergeDays:     r.MergeDays,
			DevPercent:    r.DevPercent,
			WaitPercent:   r.WaitPercent,
			ReviewPercent: r.ReviewPercent,
			MergePercent:  r.MergePercent,
			HasAIReview:   r.HasAIReview,
			MRType:        string(r.MRType),
			DORATier:      string(r.DORATier),
		}
		if r.Error != "" {
			errMsg := r.Error
			out.AnalysisError = &errMsg
		}
		rows = append(rows, out)
	}
	return rows
}

// ConvertTimelineEvents converts a timeline's events to Parquet rows.
func ConvertTimelineEvents(t *schema.MRTimeline) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(t.Events))
	for _, ev := range t.Events {
		out := TimelineEvent{
			ProjectID:     t.MR.ProjectID,
			IID:           int32(t.MR.IID),
			Sequence:      int32(ev.Sequence),
			Timestamp:     ev.Timestamp,
			ActorUsername: ev.Actor.Username,
			ActorRole:     string(ev.Actor.Role),
			IsAIBot:       ev.Actor.IsAIBot,
			EventType:     string(ev.Type),
		}
		if ev.Details != nil && ev.Details.SHA != "" {
			sha := ev.Details.SHA
			out.SHA = &sha
		}
		if ev.IntervalToNext != nil {
			interval := *ev.IntervalToNext
			out.IntervalToNextSeconds = &interval
		}
		events = append(events, out)
	}
	return events
}
