package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"nextfit/web-service/internal/model"
)

// ListTitles returns the job titles the scraper searches for.
func (c *Client) ListTitles(ctx context.Context, credential string) ([]model.JobTitle, error) {
	raw, err := c.do(ctx, "titles.list", http.MethodGet, "/jobs/titles", nil, credential, nil)
	if err != nil {
		return nil, err
	}
	titles := []model.JobTitle{}
	if err := decodeField(raw, "jobTitles", &titles); err != nil {
		return nil, &Error{Kind: KindUnknown, Status: http.StatusOK, Err: fmt.Errorf("titles.list: %w", err)}
	}
	return titles, nil
}

// AddTitle registers a new job title.
func (c *Client) AddTitle(ctx context.Context, credential, title string) error {
	_, err := c.do(ctx, "titles.create", http.MethodPost, "/jobs/titles", nil, credential,
		map[string]string{"title": title})
	return err
}

// DeleteTitle removes a job title.
func (c *Client) DeleteTitle(ctx context.Context, credential string, id int64) error {
	_, err := c.do(ctx, "titles.delete", http.MethodDelete, "/jobs/titles/"+strconv.FormatInt(id, 10), nil, credential, nil)
	return err
}

// ListSources returns the sites the scraper crawls.
func (c *Client) ListSources(ctx context.Context, credential string) ([]model.JobSource, error) {
	raw, err := c.do(ctx, "sources.list", http.MethodGet, "/jobs/sources", nil, credential, nil)
	if err != nil {
		return nil, err
	}
	sources := []model.JobSource{}
	if err := decodeField(raw, "jobSources", &sources); err != nil {
		return nil, &Error{Kind: KindUnknown, Status: http.StatusOK, Err: fmt.Errorf("sources.list: %w", err)}
	}
	return sources, nil
}

// AddSource registers a new scraping source.
func (c *Client) AddSource(ctx context.Context, credential, name, sourceURL string) error {
	_, err := c.do(ctx, "sources.create", http.MethodPost, "/jobs/sources", nil, credential,
		map[string]string{"name": name, "url": sourceURL})
	return err
}

// DeleteSource removes a scraping source.
func (c *Client) DeleteSource(ctx context.Context, credential string, id int64) error {
	_, err := c.do(ctx, "sources.delete", http.MethodDelete, "/jobs/sources/"+strconv.FormatInt(id, 10), nil, credential, nil)
	return err
}

// TriggerScrape asks the backend to scrape one job title now.
func (c *Client) TriggerScrape(ctx context.Context, credential string, titleID int64) error {
	_, err := c.do(ctx, "jobs.scrape", http.MethodPost, "/jobs/scrape", nil, credential,
		map[string]int64{"jobId": titleID})
	return err
}
