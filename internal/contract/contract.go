// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/mrpulse/mrpulse/schema"
)

// PlatformClient defines the upstream data operations needed to
// reconstruct a merge request timeline. This allows the core analysis
// logic to be tested without a live code-review platform.
type PlatformClient interface {
	// GetMergeRequest returns the MR metadata. A missing MR surfaces as
	// *NotFoundError; any other failure as *UpstreamError.
	GetMergeRequest(ctx context.Context, projectID string, iid int) (*schema.MergeRequest, error)

	// ListCommits returns all commits on the MR's source branch.
	ListCommits(ctx context.Context, projectID string, iid int) ([]schema.Commit, error)

	// ListNotes returns all discussion notes, system notes included.
	ListNotes(ctx context.Context, projectID string, iid int) ([]schema.Note, error)

	// ListPipelines returns all pipeline runs for the MR.
	ListPipelines(ctx context.Context, projectID string, iid int) ([]schema.Pipeline, error)

	// ListAwardEmoji returns the emoji reactions for a single note.
	ListAwardEmoji(ctx context.Context, projectID string, iid int, noteID int64) ([]schema.AwardEmoji, error)
}

// ProgressFunc reports batch fan-out progress after each MR settles,
// successful or not.
type ProgressFunc func(done, total int)
