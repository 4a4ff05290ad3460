package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpulse/mrpulse/schema"
)

var (
	testAuthor   = schema.UserRef{ID: 1, Username: "dana", Name: "Dana Dev"}
	testReviewer = schema.UserRef{ID: 2, Username: "bob", Name: "Bob Builder"}
)

func testMR(created time.Time, merged *time.Time) *schema.MergeRequest {
	return &schema.MergeRequest{
		ID:           100,
		IID:          7,
		Title:        "Add retry logic to uploader",
		State:        "merged",
		SourceBranch: "feature/retry",
		TargetBranch: "main",
		Author:       testAuthor,
		CreatedAt:    created,
		MergedAt:     merged,
	}
}

func eventTypes(events []schema.Event) []schema.EventType {
	types := make([]schema.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func findEvent(t *testing.T, events []schema.Event, typ schema.EventType) schema.Event {
	t.Helper()
	for _, ev := range events {
		if ev.Type == typ {
			return ev
		}
	}
	t.Fatalf("no event of type %s", typ)
	return schema.Event{}
}

func TestBuildEventsOrderingAndIntervals(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	merged := created.Add(2 * time.Hour)
	cl := NewClassifier(testClassifierConfig())

	in := BuildInput{
		MR: testMR(created, &merged),
		Commits: []schema.Commit{
			{ShortID: "abc1234", Title: "wip", AuthorName: testAuthor.Name, AuthorEmail: "dana@example.com", AuthoredDate: created.Add(-time.Hour)},
		},
		Notes: []schema.Note{
			{ID: 10, Body: "looks good overall", Author: testReviewer, CreatedAt: created.Add(30 * time.Minute)},
		},
	}

	events := BuildEvents(cl, in)
	require.NotEmpty(t, events)

	// Chronological order with contiguous sequence numbers from 1.
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Sequence)
		if i > 0 {
			assert.False(t, ev.Timestamp.Before(events[i-1].Timestamp))
		}
	}

	// Every event except the last carries the gap to its successor.
	for i, ev := range events {
		if i == len(events)-1 {
			assert.Nil(t, ev.IntervalToNext)
		} else {
			require.NotNil(t, ev.IntervalToNext)
			assert.InDelta(t, events[i+1].Timestamp.Sub(ev.Timestamp).Seconds(), *ev.IntervalToNext, 1e-9)
		}
	}

	assert.Equal(t, []schema.EventType{
		schema.EventBranchCreated,
		schema.EventCodeCommitted,
		schema.EventMRCreated,
		schema.EventHumanReviewStarted,
		schema.EventMerged,
	}, eventTypes(events))
}

func TestBuildEventsCommitSkew(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	tests := []struct {
		name     string
		authored time.Time
		want     schema.EventType
	}{
		{"well before creation", created.Add(-time.Hour), schema.EventCodeCommitted},
		{"exactly at tolerance", created.Add(-5 * time.Second), schema.EventCodeCommitted},
		{"inside tolerance", created.Add(-4 * time.Second), schema.EventCommitPushed},
		{"after creation", created.Add(10 * time.Minute), schema.EventCommitPushed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildEvents(cl, BuildInput{
				MR: testMR(created, nil),
				Commits: []schema.Commit{
					{ShortID: "abc1234", AuthorEmail: "dana@example.com", AuthorName: testAuthor.Name, AuthoredDate: tt.authored},
				},
			})
			assert.Contains(t, eventTypes(events), tt.want)
		})
	}
}

func TestBuildEventsNoCommitsNoBranchEvent(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	events := BuildEvents(cl, BuildInput{MR: testMR(created, nil)})
	assert.NotContains(t, eventTypes(events), schema.EventBranchCreated)
	assert.Contains(t, eventTypes(events), schema.EventMRCreated)
}

func TestBuildEventsDeduplication(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())
	ts := created.Add(time.Hour)

	// Same timestamp, type, and actor: one survives.
	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Notes: []schema.Note{
			{ID: 10, Body: "duplicate from pagination", Author: testReviewer, CreatedAt: ts},
			{ID: 11, Body: "duplicate from pagination", Author: testReviewer, CreatedAt: ts},
		},
	})

	count := 0
	for _, ev := range events {
		if ev.Type == schema.EventHumanReviewStarted {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuildEventsSystemNotes(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	tests := []struct {
		name string
		body string
		want schema.EventType
		skip bool
	}{
		{"draft marker", "marked this merge request as **draft**", schema.EventMarkedAsDraft, false},
		{"ready marker", "marked this merge request as **ready**", schema.EventMarkedAsReady, false},
		{"legacy WIP marker", "unmarked as a **Work In Progress**", schema.EventMarkedAsReady, false},
		{"approval", "approved this merge request", schema.EventApproved, false},
		{"unmatched noise", "added 2 commits", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildEvents(cl, BuildInput{
				MR: testMR(created, nil),
				Notes: []schema.Note{
					{ID: 10, Body: tt.body, Author: testReviewer, System: true, CreatedAt: created.Add(time.Hour)},
				},
			})
			if tt.skip {
				assert.Equal(t, []schema.EventType{schema.EventMRCreated}, eventTypes(events))
				return
			}
			ev := findEvent(t, events, tt.want)
			assert.Equal(t, schema.RoleSystem, ev.Actor.Role)
		})
	}
}

func TestBuildEventsCIContentBeatsActorClassification(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	// CI phrasing wins even when the author is a registered AI bot.
	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Notes: []schema.Note{
			{ID: 10, Body: "Pipeline #88 passed", Author: schema.UserRef{ID: 9, Username: "coderabbitai"}, CreatedAt: created.Add(time.Hour)},
		},
	})

	ev := findEvent(t, events, schema.EventCIBotResponse)
	assert.Equal(t, schema.RoleSystem, ev.Actor.Role)
	assert.NotContains(t, eventTypes(events), schema.EventAIReviewStarted)
}

func TestBuildEventsAuthorResponse(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Notes: []schema.Note{
			{ID: 10, Body: "fixed in the latest push", Author: testAuthor, CreatedAt: created.Add(time.Hour)},
		},
	})

	ev := findEvent(t, events, schema.EventAuthorResponse)
	assert.Equal(t, schema.RoleAuthor, ev.Actor.Role)
	assert.False(t, ev.Actor.IsAIBot)
}

func TestBuildEventsPipelines(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Pipelines: []schema.Pipeline{
			{ID: 1, Status: "success", CreatedAt: created.Add(10 * time.Minute), UpdatedAt: created.Add(14 * time.Minute)},
			{ID: 2, Status: "failed", CreatedAt: created.Add(20 * time.Minute), UpdatedAt: created.Add(25 * time.Minute)},
			{ID: 3, Status: "running", CreatedAt: created.Add(30 * time.Minute)},
		},
	})

	success := findEvent(t, events, schema.EventPipelineSuccess)
	assert.Equal(t, created.Add(14*time.Minute), success.Timestamp)
	assert.Equal(t, int64(1), success.Details.PipelineID)

	assert.Contains(t, eventTypes(events), schema.EventPipelineFailed)
	// Running pipelines carry no terminal signal.
	assert.Len(t, eventTypes(events), 3)
}

func TestBuildEventsReactions(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Notes: []schema.Note{
			{ID: 10, Body: "nice catch", Author: testReviewer, CreatedAt: created.Add(time.Hour)},
		},
		ReactionsByNote: map[int64][]schema.AwardEmoji{
			10: {{Name: "thumbsup"}, {Name: "rocket"}},
		},
	})

	ev := findEvent(t, events, schema.EventHumanReviewStarted)
	require.NotNil(t, ev.Details)
	assert.Equal(t, []string{"thumbsup", "rocket"}, ev.Details.Reactions)
}

func TestBuildEventsNonHybridAIReviewSetsPrior(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cfg := testClassifierConfig()
	cl := NewClassifier(cfg)

	// A bot review first; hours later the hybrid reviewer comments slowly
	// with no burst. The prior AI review alone tips the hybrid decision.
	events := BuildEvents(cl, BuildInput{
		MR: testMR(created, nil),
		Notes: []schema.Note{
			{ID: 10, Body: "automated review", Author: schema.UserRef{ID: 9, Username: "coderabbitai"}, CreatedAt: created.Add(time.Hour)},
			{ID: 11, Body: "agree with the bot", Author: schema.UserRef{ID: 3, Username: "alice"}, CreatedAt: created.Add(5 * time.Hour)},
		},
	})

	aiEvents := 0
	for _, ev := range events {
		if ev.Type == schema.EventAIReviewStarted {
			aiEvents++
		}
	}
	assert.Equal(t, 2, aiEvents)
}
