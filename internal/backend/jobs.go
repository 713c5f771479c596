package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"nextfit/web-service/internal/model"
)

// ListJobs fetches one page of the job feed. An empty cursor requests the
// first page and an empty tag means unfiltered.
func (c *Client) ListJobs(ctx context.Context, credential, cursor, tag string) (model.FeedPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if tag != "" {
		q.Set("tag", tag)
	}

	raw, err := c.do(ctx, "jobs.list", http.MethodGet, "/jobs", q, credential, nil)
	if err != nil {
		return model.FeedPage{}, err
	}

	var page model.FeedPage
	if err := decodeField(raw, "jobs", &page.Jobs); err != nil {
		return model.FeedPage{}, &Error{Kind: KindUnknown, Status: http.StatusOK, Err: fmt.Errorf("jobs.list: %w", err)}
	}
	if err := decodeField(raw, "nextCursor", &page.NextCursor); err != nil {
		return model.FeedPage{}, &Error{Kind: KindUnknown, Status: http.StatusOK, Err: fmt.Errorf("jobs.list: %w", err)}
	}
	return page, nil
}

// ListTags returns the distinct classification tags used by the feed.
func (c *Client) ListTags(ctx context.Context, credential string) ([]string, error) {
	raw, err := c.do(ctx, "jobs.tags", http.MethodGet, "/jobs/tags", nil, credential, nil)
	if err != nil {
		return nil, err
	}

	tags := []string{}
	if err := decodeField(raw, "tags", &tags); err != nil {
		return nil, &Error{Kind: KindUnknown, Status: http.StatusOK, Err: fmt.Errorf("jobs.tags: %w", err)}
	}
	return tags, nil
}
