package contract

import (
	"context"

	"github.com/mrpulse/mrpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockPlatformClient is a mock implementation of PlatformClient for testing.
type MockPlatformClient struct {
	mock.Mock
}

var _ PlatformClient = &MockPlatformClient{} // Compile-time check

// GetMergeRequest implements the PlatformClient interface.
func (m *MockPlatformClient) GetMergeRequest(ctx context.Context, projectID string, iid int) (*schema.MergeRequest, error) {
	args := m.Called(ctx, projectID, iid)
	mr, _ := args.Get(0).(*schema.MergeRequest)
	return mr, args.Error(1)
}

// ListCommits implements the PlatformClient interface.
func (m *MockPlatformClient) ListCommits(ctx context.Context, projectID string, iid int) ([]schema.Commit, error) {
	args := m.Called(ctx, projectID, iid)
	commits, _ := args.Get(0).([]schema.Commit)
	return commits, args.Error(1)
}

// ListNotes implements the PlatformClient interface.
func (m *MockPlatformClient) ListNotes(ctx context.Context, projectID string, iid int) ([]schema.Note, error) {
	args := m.Called(ctx, projectID, iid)
	notes, _ := args.Get(0).([]schema.Note)
	return notes, args.Error(1)
}

// ListPipelines implements the PlatformClient interface.
func (m *MockPlatformClient) ListPipelines(ctx context.Context, projectID string, iid int) ([]schema.Pipeline, error) {
	args := m.Called(ctx, projectID, iid)
	pipelines, _ := args.Get(0).([]schema.Pipeline)
	return pipelines, args.Error(1)
}

// ListAwardEmoji implements the PlatformClient interface.
func (m *MockPlatformClient) ListAwardEmoji(ctx context.Context, projectID string, iid int, noteID int64) ([]schema.AwardEmoji, error) {
	args := m.Called(ctx, projectID, iid, noteID)
	emoji, _ := args.Get(0).([]schema.AwardEmoji)
	return emoji, args.Error(1)
}
