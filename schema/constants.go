package schema

// Custom string types for type safety.
type (
	// EventType represents the kind of timeline event.
	EventType string

	// Role represents the contextual role of an actor on an event.
	Role string

	// Phase represents one of the four coarse lifecycle buckets.
	Phase string

	// LifecycleState represents a named key state used for fine segments.
	LifecycleState string

	// OutputMode represents the format of the output.
	OutputMode string

	// MRType represents the behavioral classification of a merge request.
	MRType string

	// DORATier represents a cycle-time performance classification.
	DORATier string

	// SortField represents a batch row sort key.
	SortField string
)

// All event types supported.
const (
	EventBranchCreated      EventType = "branch_created"
	EventMRCreated          EventType = "mr_created"
	EventCodeCommitted      EventType = "code_committed"
	EventCommitPushed       EventType = "commit_pushed"
	EventMarkedAsDraft      EventType = "marked_as_draft"
	EventMarkedAsReady      EventType = "marked_as_ready"
	EventAIReviewStarted    EventType = "ai_review_started"
	EventHumanReviewStarted EventType = "human_review_started"
	EventAuthorResponse     EventType = "author_response"
	EventCIBotResponse      EventType = "ci_bot_response"
	EventApproved           EventType = "approved"
	EventPipelineSuccess    EventType = "pipeline_success"
	EventPipelineFailed     EventType = "pipeline_failed"
	EventMerged             EventType = "merged"
)

// All actor roles supported.
const (
	RoleAuthor     Role = "author"
	RoleReviewer   Role = "reviewer"
	RoleAIReviewer Role = "ai_reviewer"
	RoleSystem     Role = "system"
)

// All lifecycle phases supported.
const (
	PhaseDev    Phase = "dev"
	PhaseWait   Phase = "wait"
	PhaseReview Phase = "review"
	PhaseMerge  Phase = "merge"
)

// AllPhases lists the phases in canonical lifecycle order.
var AllPhases = []Phase{PhaseDev, PhaseWait, PhaseReview, PhaseMerge}

// Key lifecycle states for fine-grained segmentation. StateCurrent is a
// synthetic terminal state for unmerged MRs, anchored at the last event.
const (
	StateMRCreated   LifecycleState = "mr_created"
	StateReady       LifecycleState = "marked_as_ready"
	StateFirstCommit LifecycleState = "first_commit_pushed"
	StateFirstAI     LifecycleState = "first_ai_review"
	StateFirstHuman  LifecycleState = "first_human_review"
	StateApproved    LifecycleState = "approved"
	StateMerged      LifecycleState = "merged"
	StateCurrent     LifecycleState = "current"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All MR type classifications supported.
const (
	StandardMR  MRType = "standard" // default
	DraftMR     MRType = "draft"
	ActiveDevMR MRType = "active_development"
)

// All DORA tiers supported.
const (
	EliteTier  DORATier = "elite"
	HighTier   DORATier = "high"
	MediumTier DORATier = "medium"
	LowTier    DORATier = "low"
)

// All batch sort fields supported.
const (
	SortByIID           SortField = "iid"
	SortByCreatedAt     SortField = "created_at"
	SortByCycleDays     SortField = "cycle_days"
	SortByDevDays       SortField = "dev_days"
	SortByWaitDays      SortField = "wait_days"
	SortByReviewDays    SortField = "review_days"
	SortByMergeDays     SortField = "merge_days"
	SortByCommits       SortField = "commits"
	SortByAIReviews     SortField = "ai_reviews"
	SortByHumanComments SortField = "human_comments"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSortFields lists all valid batch sort fields.
var ValidSortFields = map[SortField]struct{}{
	SortByIID:           {},
	SortByCreatedAt:     {},
	SortByCycleDays:     {},
	SortByDevDays:       {},
	SortByWaitDays:      {},
	SortByReviewDays:    {},
	SortByMergeDays:     {},
	SortByCommits:       {},
	SortByAIReviews:     {},
	SortByHumanComments: {},
}

// ReviewEventTypes lists the event types counted as review activity.
var ReviewEventTypes = map[EventType]struct{}{
	EventAIReviewStarted:    {},
	EventHumanReviewStarted: {},
}
