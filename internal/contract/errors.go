package contract

import "fmt"

// NotFoundError marks an MR id that could not be resolved upstream.
// It is fatal for that MR only; batch analysis records it on the row.
type NotFoundError struct {
	ProjectID string
	IID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("merge request %s!%d not found", e.ProjectID, e.IID)
}

// UpstreamError wraps any non-404 failure from the platform API.
// It is fatal for the affected MR only.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ValidationError marks malformed filter or sort input. It aborts the
// whole batch request before any fetch begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
