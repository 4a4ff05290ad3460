package schema

import "time"

// MRComparisonRow is one MR's flattened view for batch reporting.
// Field names and percentage semantics (0-100, shares renormalized to a
// full cycle) are a stable contract consumed by multiple renderers.
type MRComparisonRow struct {
	IID       int        `json:"iid"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`

	Commits       int `json:"commits"`
	AIReviews     int `json:"ai_reviews"`
	HumanComments int `json:"human_comments"`
	TotalComments int `json:"total_comments"`
	Reviewers     int `json:"reviewers"`

	CycleDays  float64 `json:"cycle_days"`
	DevDays    float64 `json:"dev_days"`
	WaitDays   float64 `json:"wait_days"`
	ReviewDays float64 `json:"review_days"`
	MergeDays  float64 `json:"merge_days"`

	DevPercent    float64 `json:"dev_percent"`
	WaitPercent   float64 `json:"wait_percent"`
	ReviewPercent float64 `json:"review_percent"`
	MergePercent  float64 `json:"merge_percent"`

	HasAIReview bool     `json:"has_ai_review"`
	MRType      MRType   `json:"mr_type,omitempty"`
	DORATier    DORATier `json:"dora_tier,omitempty"`

	// Error is set when the per-MR analysis failed; all stat fields are
	// zero in that case and the row is excluded from summary statistics.
	Error string `json:"error,omitempty"`
}

// PhaseBound holds independent min/max bounds for one phase. Nil means
// the bound is not set. Percent bounds are 0-100; day bounds are absolute.
type PhaseBound struct {
	MinPercent *float64 `json:"min_percent,omitempty"`
	MaxPercent *float64 `json:"max_percent,omitempty"`
	MinDays    *float64 `json:"min_days,omitempty"`
	MaxDays    *float64 `json:"max_days,omitempty"`
}

// BatchFilter holds the row filters applied after analysis. All set
// conditions combine with AND semantics.
type BatchFilter struct {
	Author        string               `json:"author,omitempty"` // case-insensitive substring
	Status        string               `json:"status,omitempty"`
	MinCycleDays  *float64             `json:"min_cycle_days,omitempty"`
	MaxCycleDays  *float64             `json:"max_cycle_days,omitempty"`
	CreatedAfter  *time.Time           `json:"created_after,omitempty"`
	CreatedBefore *time.Time           `json:"created_before,omitempty"`
	Phases        map[Phase]PhaseBound `json:"phases,omitempty"`
}

// SortSpec selects the batch row ordering.
type SortSpec struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

// BatchInput is the request for one batch analysis run.
type BatchInput struct {
	ProjectID string       `json:"project_id"`
	MRIIDs    []int        `json:"mr_iids"`
	Filter    *BatchFilter `json:"filter,omitempty"`
	Sort      *SortSpec    `json:"sort,omitempty"`
	Limit     int          `json:"limit,omitempty"`
}

// FieldStats holds nearest-rank percentile statistics for one numeric
// row field, computed over successful rows only.
type FieldStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
}

// PhaseFilterStats tracks how each filter condition shaped the result.
// ExcludedByFilter is keyed by condition name, e.g. "review-percent-min".
type PhaseFilterStats struct {
	FilteredCount    int            `json:"filtered_count"`
	ExcludedByFilter map[string]int `json:"excluded_by_filter,omitempty"`
	MostRestrictive  string         `json:"most_restrictive,omitempty"`
}

// TypeGroupStats holds grouped statistics for one MR type.
type TypeGroupStats struct {
	Type          MRType  `json:"type"`
	Count         int     `json:"count"`
	WithAIReview  int     `json:"with_ai_review"`
	MeanCycleDays float64 `json:"mean_cycle_days"`
}

// BatchSummary holds the aggregate statistics for a batch run. It is
// recomputed explicitly whenever rows are filtered post-hoc; it is not
// kept in sync with row mutation automatically.
type BatchSummary struct {
	TotalMRs       int                   `json:"total_mrs"`
	SucceededCount int                   `json:"succeeded_count"`
	FailedCount    int                   `json:"failed_count"`
	WithAIReview   int                   `json:"with_ai_review"`
	Fields         map[string]FieldStats `json:"fields"`
	TypeStats      []TypeGroupStats      `json:"type_stats,omitempty"`
	TierCounts     map[DORATier]int      `json:"tier_counts,omitempty"`
}

// BatchMetadata describes the batch request that produced a result.
type BatchMetadata struct {
	ProjectID     string    `json:"project_id"`
	RequestedIIDs []int     `json:"requested_iids"`
	GeneratedAt   time.Time `json:"generated_at"`
	Workers       int       `json:"workers"`
}

// BatchComparisonResult is the full output of one batch invocation.
type BatchComparisonResult struct {
	Rows             []MRComparisonRow `json:"rows"`
	Summary          BatchSummary      `json:"summary"`
	PhaseFilterStats *PhaseFilterStats `json:"phase_filter_stats,omitempty"`
	Metadata         BatchMetadata     `json:"metadata"`
}

// Stable field keys for BatchSummary.Fields.
const (
	FieldCycleDays     = "cycle_days"
	FieldDevDays       = "dev_days"
	FieldWaitDays      = "wait_days"
	FieldReviewDays    = "review_days"
	FieldMergeDays     = "merge_days"
	FieldCommits       = "commits"
	FieldAIReviews     = "ai_reviews"
	FieldHumanComments = "human_comments"
	FieldReviewers     = "reviewers"
)
