package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

func testConfig() *contract.Config {
	cfg := &contract.Config{
		Workers:    2,
		Classifier: testClassifierConfig(),
		Types:      schema.DefaultTypeThresholds(),
	}
	return cfg
}

// setupMockMR wires a full happy-path MR onto the mock client.
func setupMockMR(m *contract.MockPlatformClient, projectID string, iid int, created time.Time, merged *time.Time) {
	mr := testMR(created, merged)
	mr.IID = iid

	m.On("GetMergeRequest", mock.Anything, projectID, iid).Return(mr, nil)
	m.On("ListCommits", mock.Anything, projectID, iid).Return([]schema.Commit{
		{ShortID: "abc1234", Title: "implement retry", AuthorName: testAuthor.Name, AuthorEmail: "dana@example.com", AuthoredDate: created.Add(-time.Hour)},
	}, nil)
	m.On("ListNotes", mock.Anything, projectID, iid).Return([]schema.Note{
		{ID: 10, Body: "Walkthrough of the changes follows.", Author: schema.UserRef{ID: 9, Username: "coderabbitai", Name: "CodeRabbit"}, CreatedAt: created.Add(15 * time.Minute)},
		{ID: 11, Body: "one question about the backoff cap", Author: testReviewer, CreatedAt: created.Add(time.Hour)},
		{ID: 12, Body: "approved this merge request", Author: testReviewer, System: true, CreatedAt: created.Add(100 * time.Minute)},
	}, nil)
	m.On("ListPipelines", mock.Anything, projectID, iid).Return([]schema.Pipeline{
		{ID: 5, Status: "success", CreatedAt: created.Add(5 * time.Minute), UpdatedAt: created.Add(9 * time.Minute)},
	}, nil)
	m.On("ListAwardEmoji", mock.Anything, projectID, iid, mock.Anything).Return([]schema.AwardEmoji(nil), nil)
}

func TestAnalyzeMR(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	merged := created.Add(2 * time.Hour)

	client := &contract.MockPlatformClient{}
	setupMockMR(client, "42", 7, created, &merged)

	timeline, err := AnalyzeMR(context.Background(), client, testConfig(), "42", 7)
	require.NoError(t, err)

	assert.Equal(t, "42", timeline.MR.ProjectID)
	assert.Equal(t, 7, timeline.MR.IID)
	assert.Equal(t, "dana", timeline.MR.Author)
	assert.InDelta(t, (2 * time.Hour).Seconds(), timeline.CycleTimeSeconds, 1e-9)

	assert.NotEmpty(t, timeline.Events)
	assert.NotEmpty(t, timeline.Segments)
	assert.NotEmpty(t, timeline.PhaseSegments)

	assert.Equal(t, 1, timeline.Summary.Commits)
	assert.Equal(t, 1, timeline.Summary.AIReviews)
	assert.Equal(t, 1, timeline.Summary.HumanComments)
	assert.Equal(t, 2, timeline.Summary.Reviewers)

	// The summary is a pure function of the event list.
	assert.Equal(t, timeline.Summary, DeriveSummary(timeline.Events))

	client.AssertExpectations(t)
}

func TestAnalyzeMRNotFound(t *testing.T) {
	client := &contract.MockPlatformClient{}
	client.On("GetMergeRequest", mock.Anything, "42", 999).
		Return((*schema.MergeRequest)(nil), &contract.NotFoundError{ProjectID: "42", IID: 999})

	_, err := AnalyzeMR(context.Background(), client, testConfig(), "42", 999)
	require.Error(t, err)

	var notFound *contract.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 999, notFound.IID)
}

func TestAnalyzeMRFailFast(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	client := &contract.MockPlatformClient{}
	client.On("GetMergeRequest", mock.Anything, "42", 7).Return(testMR(created, nil), nil)
	client.On("ListCommits", mock.Anything, "42", 7).Return([]schema.Commit(nil), nil)
	client.On("ListNotes", mock.Anything, "42", 7).
		Return([]schema.Note(nil), &contract.UpstreamError{Op: "list notes", Err: errors.New("boom")})

	// Pipelines are never fetched after the notes failure; the mock would
	// fail the test on an unexpected call.
	_, err := AnalyzeMR(context.Background(), client, testConfig(), "42", 7)
	require.Error(t, err)

	var upstream *contract.UpstreamError
	assert.ErrorAs(t, err, &upstream)
	client.AssertExpectations(t)
}

func TestDeriveSummaryReviewCutoff(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	aiActor := schema.Actor{ID: 9, Username: "coderabbitai", Role: schema.RoleAIReviewer, IsAIBot: true}
	humanActor := schema.Actor{ID: 2, Username: "bob", Role: schema.RoleReviewer}

	events := []schema.Event{
		{Sequence: 1, Timestamp: t0, Type: schema.EventMRCreated, Actor: schema.Actor{ID: 1, Role: schema.RoleAuthor}},
		{Sequence: 2, Timestamp: t0.Add(10 * time.Minute), Type: schema.EventAIReviewStarted, Actor: aiActor},
		{Sequence: 3, Timestamp: t0.Add(time.Hour), Type: schema.EventApproved, Actor: schema.Actor{ID: 2, Role: schema.RoleSystem}},
		// Post-approval chatter never counts as review activity.
		{Sequence: 4, Timestamp: t0.Add(2 * time.Hour), Type: schema.EventHumanReviewStarted, Actor: humanActor},
		{Sequence: 5, Timestamp: t0.Add(3 * time.Hour), Type: schema.EventMerged, Actor: schema.Actor{Role: schema.RoleSystem}},
	}

	summary := DeriveSummary(events)
	assert.Equal(t, 1, summary.AIReviews)
	assert.Equal(t, 0, summary.Comments.Human)
	assert.Equal(t, 1, summary.Reviewers)
	assert.Equal(t, 5, summary.TotalEvents)
	assert.Equal(t, 2, summary.SystemEvents)
}
