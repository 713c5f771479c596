package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nextfit/web-service/internal/model"
)

// fetchCall is one ListJobs invocation held until the test replies.
type fetchCall struct {
	credential string
	cursor     string
	tag        string
	reply      chan fetchResult
}

type fetchResult struct {
	page model.FeedPage
	err  error
}

func (c *fetchCall) respond(page model.FeedPage, err error) {
	c.reply <- fetchResult{page: page, err: err}
}

// fakeFetcher parks every call on a channel so tests control ordering.
type fakeFetcher struct {
	calls        chan *fetchCall
	ignoreCancel bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(chan *fetchCall, 32)}
}

func (f *fakeFetcher) ListJobs(ctx context.Context, credential, cursor, tag string) (model.FeedPage, error) {
	c := &fetchCall{credential: credential, cursor: cursor, tag: tag, reply: make(chan fetchResult, 1)}
	f.calls <- c
	if f.ignoreCancel {
		r := <-c.reply
		return r.page, r.err
	}
	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-ctx.Done():
		return model.FeedPage{}, ctx.Err()
	}
}

// next returns the next issued call or fails the test.
func (f *fakeFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch, none was issued")
		return nil
	}
}

// none asserts that no call is pending.
func (f *fakeFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch: cursor=%q tag=%q", c.cursor, c.tag)
	default:
	}
}

// jobs builds postings j<from>..j<from+n-1>.
func jobs(from, n int) []model.JobPosting {
	out := make([]model.JobPosting, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, model.JobPosting{ID: fmt.Sprintf("j%d", i), Title: fmt.Sprintf("Job %d", i)})
	}
	return out
}

func ids(items []model.JobPosting) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
