// Package schema has configs, models and shared helpers for all parts of mrpulse.
package schema

import "time"

// Actor identifies who performed a timeline event. Identity is the
// platform user id; Role is contextual and may differ for the same user
// across events (the MR author always carries RoleAuthor).
type Actor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IsAIBot  bool   `json:"is_ai_bot"`
}

// EventDetails carries optional per-event context such as a message
// excerpt, commit SHA, pipeline id, or emoji reactions on the source note.
type EventDetails struct {
	Message    string   `json:"message,omitempty"`
	SHA        string   `json:"sha,omitempty"`
	PipelineID int64    `json:"pipeline_id,omitempty"`
	Reactions  []string `json:"reactions,omitempty"`
}

// Event is a single entry in the reconstructed MR timeline.
// Sequence numbers are contiguous starting at 1 and assigned after the
// final sort/dedup pass. IntervalToNext is nil for the last event.
type Event struct {
	Sequence       int           `json:"sequence"`
	Timestamp      time.Time     `json:"timestamp"`
	Actor          Actor         `json:"actor"`
	Type           EventType     `json:"type"`
	Details        *EventDetails `json:"details,omitempty"`
	IntervalToNext *float64      `json:"interval_to_next,omitempty"` // seconds
}

// MRInfo is the merge request metadata carried on a timeline.
type MRInfo struct {
	ProjectID    string     `json:"project_id"`
	IID          int        `json:"iid"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	State        string     `json:"state"`
	IsDraft      bool       `json:"is_draft"`
	SourceBranch string     `json:"source_branch"`
	TargetBranch string     `json:"target_branch"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
	WebURL       string     `json:"web_url"`
}
