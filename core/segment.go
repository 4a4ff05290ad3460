package core

import (
	"sort"

	"github.com/mrpulse/mrpulse/schema"
)

// percentDriftTolerance is the allowed deviation of a segment set's
// percentage sum from 100 before proportional rescaling kicks in.
const percentDriftTolerance = 1.0

// stateAnchor ties a lifecycle state to the event where it first occurred.
type stateAnchor struct {
	State schema.LifecycleState
	Event schema.Event
}

// keyStates holds the first occurrence of each key lifecycle state.
type keyStates struct {
	created     *schema.Event
	ready       *schema.Event
	firstCommit *schema.Event
	firstAI     *schema.Event
	firstHuman  *schema.Event
	approved    *schema.Event
	merged      *schema.Event
	branch      *schema.Event
	last        *schema.Event
}

// Segment derives the fine-grained time segments and the coarse
// Dev/Wait/Review/Merge phases from an ordered event sequence.
//
// Fine segments connect consecutive occurred key states, re-sorted by
// actual timestamp rather than by canonical state order, so that
// out-of-order real-world flows (review before "ready" on a draft MR)
// still produce chronologically truthful segments. An unmerged MR gets a
// trailing segment to a synthetic Current state anchored at the last event.
func Segment(events []schema.Event, totalCycleSeconds float64) ([]schema.TimeSegment, []schema.PhaseSegment) {
	if len(events) == 0 {
		return nil, nil
	}

	ks := identifyKeyStates(events)
	segments := buildFineSegments(ks, totalCycleSeconds)
	phases := buildPhaseSegments(ks, totalCycleSeconds)
	return segments, phases
}

// identifyKeyStates picks, in event order, the first occurrence of each
// key lifecycle state. Review states respect the review cutoff: a review
// event after Approved (or after Merged when nothing was approved) is
// noise, not work, and never anchors a state.
func identifyKeyStates(events []schema.Event) keyStates {
	var ks keyStates

	// First pass for the cutoff anchors.
	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case schema.EventApproved:
			if ks.approved == nil {
				ks.approved = ev
			}
		case schema.EventMerged:
			if ks.merged == nil {
				ks.merged = ev
			}
		}
	}
	cutoff := reviewCutoff(ks.approved, ks.merged)

	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case schema.EventMRCreated:
			if ks.created == nil {
				ks.created = ev
			}
		case schema.EventMarkedAsReady:
			if ks.ready == nil {
				ks.ready = ev
			}
		case schema.EventCommitPushed:
			if ks.firstCommit == nil {
				ks.firstCommit = ev
			}
		case schema.EventAIReviewStarted:
			if ks.firstAI == nil && withinReviewCutoff(ev, cutoff) {
				ks.firstAI = ev
			}
		case schema.EventHumanReviewStarted:
			if ks.firstHuman == nil && withinReviewCutoff(ev, cutoff) {
				ks.firstHuman = ev
			}
		case schema.EventBranchCreated:
			if ks.branch == nil {
				ks.branch = ev
			}
		}
	}
	ks.last = &events[len(events)-1]
	return ks
}

// reviewCutoff returns the event after which review activity stops
// counting: Approved when present, otherwise Merged, otherwise nil.
func reviewCutoff(approved, merged *schema.Event) *schema.Event {
	if approved != nil {
		return approved
	}
	return merged
}

func withinReviewCutoff(ev, cutoff *schema.Event) bool {
	return cutoff == nil || !ev.Timestamp.After(cutoff.Timestamp)
}

// buildFineSegments pairs the occurred key states into chronological
// segments via the generic sort-then-pair routine.
func buildFineSegments(ks keyStates, totalSeconds float64) []schema.TimeSegment {
	var anchors []stateAnchor
	add := func(state schema.LifecycleState, ev *schema.Event) {
		if ev != nil {
			anchors = append(anchors, stateAnchor{State: state, Event: *ev})
		}
	}
	add(schema.StateMRCreated, ks.created)
	add(schema.StateReady, ks.ready)
	add(schema.StateFirstCommit, ks.firstCommit)
	add(schema.StateFirstAI, ks.firstAI)
	add(schema.StateFirstHuman, ks.firstHuman)
	add(schema.StateApproved, ks.approved)
	add(schema.StateMerged, ks.merged)

	if ks.merged == nil && ks.last != nil {
		add(schema.StateCurrent, ks.last)
	}

	return sortThenPair(anchors, totalSeconds)
}

// sortThenPair sorts anchors by actual timestamp and connects each
// consecutive pair into a segment. This is deliberately not a state
// machine: real-world lifecycles violate the canonical transition order.
func sortThenPair(anchors []stateAnchor, totalSeconds float64) []schema.TimeSegment {
	if len(anchors) < 2 {
		return nil
	}
	sort.SliceStable(anchors, func(i, j int) bool {
		return anchors[i].Event.Timestamp.Before(anchors[j].Event.Timestamp)
	})

	segments := make([]schema.TimeSegment, 0, len(anchors)-1)
	for i := 0; i < len(anchors)-1; i++ {
		from, to := anchors[i], anchors[i+1]
		duration := to.Event.Timestamp.Sub(from.Event.Timestamp).Seconds()
		segments = append(segments, schema.TimeSegment{
			From:            from.State,
			To:              to.State,
			FromEvent:       from.Event,
			ToEvent:         to.Event,
			DurationSeconds: duration,
			Percentage:      percentOf(duration, totalSeconds),
		})
	}

	renormalizeSegments(segments)
	return segments
}

// buildPhaseSegments derives the four coarse phases with the edge-case
// policies:
//
//   - Dev runs BranchCreated (or MRCreated when no commits exist) to
//     DevEnd. DevEnd is the ready marker, unless a review event precedes
//     it, in which case development effectively ended at MR creation.
//   - Wait runs DevEnd to the first review; with no review it falls back
//     to Approved, then to the last event.
//   - Review runs first review to Approved, or to the last event when
//     nothing was approved.
//   - Merge runs Approved to Merged, only when both exist.
func buildPhaseSegments(ks keyStates, totalSeconds float64) []schema.PhaseSegment {
	if ks.created == nil {
		return nil
	}

	firstReview := earlierEvent(ks.firstAI, ks.firstHuman)

	devEnd := ks.ready
	if devEnd == nil || (firstReview != nil && firstReview.Timestamp.Before(devEnd.Timestamp)) {
		// Reviewed while still draft, or never marked ready: development
		// ends at MR creation.
		devEnd = ks.created
	}

	devStart := ks.branch
	if devStart == nil {
		devStart = ks.created
	}

	var phases []schema.PhaseSegment
	addPhase := func(phase schema.Phase, from, to *schema.Event) {
		if from == nil || to == nil || to.Timestamp.Before(from.Timestamp) {
			return // phase absent
		}
		duration := to.Timestamp.Sub(from.Timestamp).Seconds()
		phases = append(phases, schema.PhaseSegment{
			Phase:           phase,
			FromEvent:       *from,
			ToEvent:         *to,
			DurationSeconds: duration,
			Percentage:      percentOf(duration, totalSeconds),
		})
	}

	addPhase(schema.PhaseDev, devStart, devEnd)

	waitEnd := firstReview
	if waitEnd == nil {
		waitEnd = ks.approved
	}
	if waitEnd == nil {
		waitEnd = ks.last
	}
	addPhase(schema.PhaseWait, devEnd, waitEnd)

	if firstReview != nil {
		reviewEnd := ks.approved
		if reviewEnd == nil {
			reviewEnd = ks.last
		}
		addPhase(schema.PhaseReview, firstReview, reviewEnd)
	}

	if ks.approved != nil && ks.merged != nil {
		addPhase(schema.PhaseMerge, ks.approved, ks.merged)
	}

	renormalizePhases(phases)
	return phases
}

func earlierEvent(a, b *schema.Event) *schema.Event {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Timestamp.Before(a.Timestamp):
		return b
	default:
		return a
	}
}

func percentOf(duration, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return duration / total * 100
}

// renormalizeSegments rescales segment percentages proportionally to sum
// to exactly 100 when floating rounding across many segments drifts past
// the tolerance.
func renormalizeSegments(segments []schema.TimeSegment) {
	sum := 0.0
	for _, s := range segments {
		sum += s.Percentage
	}
	if len(segments) == 0 || sum <= 0 {
		return
	}
	if diff := sum - 100; diff > percentDriftTolerance || diff < -percentDriftTolerance {
		scale := 100 / sum
		for i := range segments {
			segments[i].Percentage *= scale
		}
	}
}

// renormalizePhases applies the same rescaling policy to phase segments.
func renormalizePhases(phases []schema.PhaseSegment) {
	sum := 0.0
	for _, p := range phases {
		sum += p.Percentage
	}
	if len(phases) == 0 || sum <= 0 {
		return
	}
	if diff := sum - 100; diff > percentDriftTolerance || diff < -percentDriftTolerance {
		scale := 100 / sum
		for i := range phases {
			phases[i].Percentage *= scale
		}
	}
}
