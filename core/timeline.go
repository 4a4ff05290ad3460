package core

import (
	"context"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

// AnalyzeMR reconstructs the full timeline for a single merge request.
// It fetches the raw records, builds the event sequence, segments the
// lifecycle, and derives the summary. The returned timeline is owned by
// the caller and never mutated afterwards.
//
// A missing MR surfaces as *contract.NotFoundError; every other upstream
// failure propagates unchanged so the batch layer can classify it.
func AnalyzeMR(ctx context.Context, client contract.PlatformClient, cfg *contract.Config, projectID string, iid int) (*schema.MRTimeline, error) {
	cl := NewClassifier(cfg.Classifier)

	// --- 1. Fetch Phase ---
	mr, err := client.GetMergeRequest(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	commits, err := client.ListCommits(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	notes, err := client.ListNotes(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	pipelines, err := client.ListPipelines(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	reactions, err := fetchReactions(ctx, client, projectID, iid, notes)
	if err != nil {
		return nil, err
	}

	// --- 2. Event Assembly ---
	events := BuildEvents(cl, BuildInput{
		MR:              mr,
		Commits:         commits,
		Notes:           notes,
		Pipelines:       pipelines,
		ReactionsByNote: reactions,
	})

	// --- 3. Segmentation ---
	cycleSeconds := cycleTimeSeconds(mr, events)
	segments, phases := Segment(events, cycleSeconds)

	// --- 4. Summary Derivation ---
	summary := DeriveSummary(events)

	return &schema.MRTimeline{
		MR:               mrInfo(projectID, mr),
		Events:           events,
		Segments:         segments,
		PhaseSegments:    phases,
		Summary:          summary,
		CycleTimeSeconds: cycleSeconds,
	}, nil
}

// fetchReactions collects emoji reactions for all discussion notes.
// System notes never carry reactions worth fetching.
func fetchReactions(ctx context.Context, client contract.PlatformClient, projectID string, iid int, notes []schema.Note) (map[int64][]schema.AwardEmoji, error) {
	reactions := make(map[int64][]schema.AwardEmoji)
	for _, note := range notes {
		if note.System {
			continue
		}
		emoji, err := client.ListAwardEmoji(ctx, projectID, iid, note.ID)
		if err != nil {
			return nil, err
		}
		if len(emoji) > 0 {
			reactions[note.ID] = emoji
		}
	}
	return reactions, nil
}

// cycleTimeSeconds is merge minus creation, or last event minus creation
// for an unmerged MR. Anchoring at the last event instead of wall-clock
// now keeps reruns over fixed input byte-identical.
func cycleTimeSeconds(mr *schema.MergeRequest, events []schema.Event) float64 {
	end := mr.CreatedAt
	if mr.MergedAt != nil {
		end = *mr.MergedAt
	} else if len(events) > 0 {
		end = events[len(events)-1].Timestamp
	}
	seconds := end.Sub(mr.CreatedAt).Seconds()
	if seconds < 0 {
		return 0
	}
	return seconds
}

// DeriveSummary computes the aggregate counts from a final event list.
// It is a pure function of the events: re-deriving it from a serialized
// timeline must reproduce the stored summary exactly.
func DeriveSummary(events []schema.Event) schema.MRSummary {
	var summary schema.MRSummary
	summary.TotalEvents = len(events)

	cutoff := summaryReviewCutoff(events)
	contributors := make(map[int64]struct{})
	reviewers := make(map[int64]struct{})

	for _, ev := range events {
		switch ev.Type {
		case schema.EventCodeCommitted, schema.EventCommitPushed:
			summary.Commits++
			contributors[ev.Actor.ID] = struct{}{}
		case schema.EventAIReviewStarted:
			if withinSummaryCutoff(ev, cutoff) {
				summary.AIReviews++
				summary.Comments.AI++
				reviewers[ev.Actor.ID] = struct{}{}
			}
		case schema.EventHumanReviewStarted:
			if withinSummaryCutoff(ev, cutoff) {
				summary.Comments.Human++
				reviewers[ev.Actor.ID] = struct{}{}
			}
		case schema.EventAuthorResponse:
			summary.Comments.Author++
		case schema.EventCIBotResponse:
			summary.Comments.CIBot++
		}

		if ev.Actor.Role == schema.RoleSystem && ev.Type != schema.EventCIBotResponse {
			summary.SystemEvents++
		}
	}

	summary.HumanComments = summary.Comments.Human + summary.Comments.Author
	summary.Contributors = len(contributors)
	summary.Reviewers = len(reviewers)
	return summary
}

// summaryReviewCutoff finds the timestamp after which review events are
// post-approval noise: the first Approved event, or the first Merged
// event when nothing was approved.
func summaryReviewCutoff(events []schema.Event) *schema.Event {
	var merged *schema.Event
	for i := range events {
		switch events[i].Type {
		case schema.EventApproved:
			return &events[i]
		case schema.EventMerged:
			if merged == nil {
				merged = &events[i]
			}
		}
	}
	return merged
}

func withinSummaryCutoff(ev schema.Event, cutoff *schema.Event) bool {
	return cutoff == nil || !ev.Timestamp.After(cutoff.Timestamp)
}

func mrInfo(projectID string, mr *schema.MergeRequest) schema.MRInfo {
	return schema.MRInfo{
		ProjectID:    projectID,
		IID:          mr.IID,
		Title:        mr.Title,
		Author:       mr.Author.Username,
		State:        mr.State,
		IsDraft:      mr.Draft,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		CreatedAt:    mr.CreatedAt,
		MergedAt:     mr.MergedAt,
		WebURL:       mr.WebURL,
	}
}
