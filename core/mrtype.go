package core

import (
	"github.com/mrpulse/mrpulse/schema"
)

// ClassifyMRType derives the behavioral MR type from the timeline.
//
//   - Active-Development: the MR was re-drafted after creation (work
//     resumed mid-review) and its development window spans at least the
//     configured hour threshold.
//   - Draft: the MR sat in draft state for at least the configured
//     threshold before the ready marker (or never left draft).
//   - Standard: everything else.
func ClassifyMRType(t *schema.MRTimeline, th schema.TypeThresholds) schema.MRType {
	if redrafted(t) && developmentHours(t) >= th.ActiveDevHours {
		return schema.ActiveDevMR
	}
	if draftHours(t) >= th.DraftHours {
		return schema.DraftMR
	}
	return schema.StandardMR
}

// redrafted reports whether a draft marker appears after MR creation:
// the author pulled the MR back into active development.
func redrafted(t *schema.MRTimeline) bool {
	for _, ev := range t.Events {
		if ev.Type == schema.EventMarkedAsDraft && ev.Timestamp.After(t.MR.CreatedAt) {
			return true
		}
	}
	return false
}

// developmentHours spans from the first event to the last commit push,
// the window in which code was still being written.
func developmentHours(t *schema.MRTimeline) float64 {
	if len(t.Events) == 0 {
		return 0
	}
	start := t.Events[0].Timestamp
	end := start
	for _, ev := range t.Events {
		if ev.Type == schema.EventCodeCommitted || ev.Type == schema.EventCommitPushed {
			end = ev.Timestamp
		}
	}
	return end.Sub(start).Hours()
}

// draftHours measures how long the MR stayed in draft: creation to the
// first ready marker, or the whole cycle when the MR never left draft.
func draftHours(t *schema.MRTimeline) float64 {
	if !t.MR.IsDraft && !hasDraftMarker(t) {
		return 0
	}
	for _, ev := range t.Events {
		if ev.Type == schema.EventMarkedAsReady {
			return ev.Timestamp.Sub(t.MR.CreatedAt).Hours()
		}
	}
	return t.CycleTimeSeconds / 3600
}

func hasDraftMarker(t *schema.MRTimeline) bool {
	for _, ev := range t.Events {
		if ev.Type == schema.EventMarkedAsDraft || ev.Type == schema.EventMarkedAsReady {
			return true
		}
	}
	return false
}

// ClassifyDORATier buckets a cycle time into the industry tiers.
func ClassifyDORATier(cycleDays float64) schema.DORATier {
	switch {
	case cycleDays < 1:
		return schema.EliteTier
	case cycleDays < 7:
		return schema.HighTier
	case cycleDays < 30:
		return schema.MediumTier
	default:
		return schema.LowTier
	}
}
