// Package glclient implements the platform client contract against the
// GitLab REST API.
package glclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

const (
	perPage        = 100
	requestTimeout = 30 * time.Second
	maxElapsedTime = 2 * time.Minute
)

// Client talks to the GitLab v4 REST API. Retries and timeouts live
// here, not in the analysis core: the engine treats any failure from
// this layer as terminal for the affected MR.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ contract.PlatformClient = &Client{} // Compile-time check

// New creates a Client for the given API base URL, e.g.
// "https://gitlab.com/api/v4". The token may be empty for public projects.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// GetMergeRequest implements the PlatformClient interface.
func (c *Client) GetMergeRequest(ctx context.Context, projectID string, iid int) (*schema.MergeRequest, error) {
	var mr schema.MergeRequest
	path := fmt.Sprintf("/projects/%s/merge_requests/%d", url.PathEscape(projectID), iid)
	if err := c.getJSON(ctx, path, nil, &mr); err != nil {
		if isNotFound(err) {
			return nil, &contract.NotFoundError{ProjectID: projectID, IID: iid}
		}
		return nil, &contract.UpstreamError{Op: "get merge request", Err: err}
	}
	return &mr, nil
}

// ListCommits implements the PlatformClient interface.
func (c *Client) ListCommits(ctx context.Context, projectID string, iid int) ([]schema.Commit, error) {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/commits", url.PathEscape(projectID), iid)
	commits, err := getPaginated[schema.Commit](ctx, c, path)
	if err != nil {
		return nil, &contract.UpstreamError{Op: "list commits", Err: err}
	}
	return commits, nil
}

// ListNotes implements the PlatformClient interface.
func (c *Client) ListNotes(ctx context.Context, projectID string, iid int) ([]schema.Note, error) {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/notes", url.PathEscape(projectID), iid)
	notes, err := getPaginated[schema.Note](ctx, c, path)
	if err != nil {
		return nil, &contract.UpstreamError{Op: "list notes", Err: err}
	}
	return notes, nil
}

// ListPipelines implements the PlatformClient interface.
func (c *Client) ListPipelines(ctx context.Context, projectID string, iid int) ([]schema.Pipeline, error) {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/pipelines", url.PathEscape(projectID), iid)
	pipelines, err := getPaginated[schema.Pipeline](ctx, c, path)
	if err != nil {
		return nil, &contract.UpstreamError{Op: "list pipelines", Err: err}
	}
	return pipelines, nil
}

// ListAwardEmoji implements the PlatformClient interface.
func (c *Client) ListAwardEmoji(ctx context.Context, projectID string, iid int, noteID int64) ([]schema.AwardEmoji, error) {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/notes/%d/award_emoji", url.PathEscape(projectID), iid, noteID)
	emoji, err := getPaginated[schema.AwardEmoji](ctx, c, path)
	if err != nil {
		return nil, &contract.UpstreamError{Op: "list award emoji", Err: err}
	}
	return emoji, nil
}

// statusError distinguishes HTTP-level failures so 404 can map to the
// not-found contract and 5xx can be retried.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.code, e.url)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

// getPaginated follows GitLab's page-based pagination until a short page.
func getPaginated[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		query := url.Values{
			"per_page": []string{strconv.Itoa(perPage)},
			"page":     []string{strconv.Itoa(page)},
		}
		var batch []T
		if err := c.getJSON(ctx, path, query, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

// getJSON performs one GET with exponential-backoff retry on transport
// errors and server-side failures. Client-side errors (4xx) never retry.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.token != "" {
			req.Header.Set("PRIVATE-TOKEN", c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err // transport error, retryable
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode %s: %w", reqURL, err))
			}
			return nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return &statusError{code: resp.StatusCode, url: reqURL}
		default:
			return backoff.Permanent(&statusError{code: resp.StatusCode, url: reqURL})
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsedTime
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
