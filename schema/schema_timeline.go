package schema

// TimeSegment connects two consecutive occurred key states, re-sorted by
// actual timestamp. DurationSeconds always matches the event timestamp
// difference; Percentage is the share of the total cycle time (0-100).
type TimeSegment struct {
	From            LifecycleState `json:"from"`
	To              LifecycleState `json:"to"`
	FromEvent       Event          `json:"from_event"`
	ToEvent         Event          `json:"to_event"`
	DurationSeconds float64        `json:"duration_seconds"`
	Percentage      float64        `json:"percentage"`
}

// PhaseSegment is a coarse Dev/Wait/Review/Merge bucket. A phase may be
// absent entirely, e.g. no Wait phase when review starts before the ready
// marker.
type PhaseSegment struct {
	Phase           Phase   `json:"phase"`
	FromEvent       Event   `json:"from_event"`
	ToEvent         Event   `json:"to_event"`
	DurationSeconds float64 `json:"duration_seconds"`
	Percentage      float64 `json:"percentage"`
}

// CommentBreakdown splits discussion comments by origin.
type CommentBreakdown struct {
	Human  int `json:"human"`
	AI     int `json:"ai"`
	Author int `json:"author"`
	CIBot  int `json:"ci_bot"`
}

// MRSummary holds aggregate counts derived from the event list. It is
// never mutated independently; re-deriving it from the events must yield
// the same values.
type MRSummary struct {
	Commits       int              `json:"commits"`
	AIReviews     int              `json:"ai_reviews"`
	HumanComments int              `json:"human_comments"`
	SystemEvents  int              `json:"system_events"`
	TotalEvents   int              `json:"total_events"`
	Contributors  int              `json:"contributors"`
	Reviewers     int              `json:"reviewers"`
	Comments      CommentBreakdown `json:"comments"`
}

// MRTimeline is the complete reconstructed view of one merge request.
// It is owned by a single analysis invocation and immutable once returned.
type MRTimeline struct {
	MR               MRInfo         `json:"mr"`
	Events           []Event        `json:"events"`
	Segments         []TimeSegment  `json:"segments"`
	PhaseSegments    []PhaseSegment `json:"phase_segments"`
	Summary          MRSummary      `json:"summary"`
	CycleTimeSeconds float64        `json:"cycle_time_seconds"`
}

// PhaseDurationSeconds returns the duration of the given phase, or zero
// if the phase is absent from the timeline.
func (t *MRTimeline) PhaseDurationSeconds(p Phase) float64 {
	for _, ps := range t.PhaseSegments {
		if ps.Phase == p {
			return ps.DurationSeconds
		}
	}
	return 0
}

// PhasePercentage returns the percentage of the cycle spent in the given
// phase, or zero if the phase is absent.
func (t *MRTimeline) PhasePercentage(p Phase) float64 {
	for _, ps := range t.PhaseSegments {
		if ps.Phase == p {
			return ps.Percentage
		}
	}
	return 0
}
