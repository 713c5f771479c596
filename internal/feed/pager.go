package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/metrics"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

// PublicPreviewLimit is how many items an anonymous visitor sees on the
// public feed.
const PublicPreviewLimit = 5

// Fetcher loads one page of the feed. *backend.Client satisfies it.
type Fetcher interface {
	ListJobs(ctx context.Context, credential, cursor, tag string) (model.FeedPage, error)
}

// Pager owns the pages loaded for one feed query.
//
// All methods are safe for concurrent use. Fetches run on their own
// goroutine; use Wait to block until the outstanding one resolves.
type Pager struct {
	fetcher Fetcher
	sess    *session.Observable
	log     *slog.Logger

	mu     sync.Mutex
	active bool
	tag    string
	mode   model.AccessMode
	gen    uint64
	state  State
	pages  []model.FeedPage
	err    error
	cancel context.CancelFunc
	done   chan struct{} // closed when the outstanding fetch resolves, nil if none
}

// New returns an idle Pager. The credential attached to each fetch is read
// from sess when the fetch is issued.
func New(fetcher Fetcher, sess *session.Observable) *Pager {
	return &Pager{
		fetcher: fetcher,
		sess:    sess,
		log:     slog.Default().With("component", "feed.pager"),
		state:   StateIdle,
	}
}

// ── Query lifecycle ───────────────────────────────────────────────────────

// StartQuery discards every loaded page and issues the first-page fetch for
// tag ("" for unfiltered) in mode. A fetch still running for the previous
// query is cancelled and its result ignored.
func (p *Pager) StartQuery(tag string, mode model.AccessMode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.active = true
	p.tag = tag
	p.mode = mode
	p.pages = nil
	p.err = nil
	p.setState(StateFetchingFirstPage)
	p.launch("")
}

// FetchNextPage requests the page after the last one loaded. It is a no-op
// when no query is active, the query is exhausted, or a fetch is already
// outstanding. After an error it re-requests the page that failed.
// It reports whether a fetch was issued.
func (p *Pager) FetchNextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || p.state.Fetching() || p.state == StateExhausted {
		return false
	}

	p.err = nil
	if len(p.pages) == 0 {
		p.setState(StateFetchingFirstPage)
		p.launch("")
		return true
	}
	p.setState(StateFetchingNextPage)
	p.launch(p.pages[len(p.pages)-1].NextCursor)
	return true
}

// RequestMore is the viewport signal: when the end of the list is in view
// and the feed is not restricted for s, it fetches the next page.
func (p *Pager) RequestMore(inView bool, s session.State) bool {
	if !inView {
		return false
	}
	p.mu.Lock()
	restricted := p.restricted(s)
	p.mu.Unlock()
	if restricted {
		return false
	}
	return p.FetchNextPage()
}

// Wait blocks until no fetch is outstanding or ctx ends, then returns the
// query's error, if any.
func (p *Pager) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close cancels any outstanding fetch and forgets the query.
func (p *Pager) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.active = false
	p.pages = nil
	p.err = nil
	p.done = nil
	p.state = StateIdle
}

// launch issues a fetch for cursor under the current generation.
// Callers hold p.mu.
func (p *Pager) launch(cursor string) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	gen, tag, mode := p.gen, p.tag, p.mode
	credential := ""
	if p.sess != nil {
		credential = p.sess.Get().Credential
	}

	kind := "next"
	if cursor == "" {
		kind = "first"
	}
	metrics.FeedFetches.WithLabelValues(string(mode), kind).Inc()

	go func() {
		defer close(done)
		defer cancel()
		page, err := p.fetcher.ListJobs(ctx, credential, cursor, tag)
		p.resolve(gen, page, err)
	}()
}

// resolve applies a fetch result if it still belongs to the active query.
func (p *Pager) resolve(gen uint64, page model.FeedPage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		metrics.FeedStaleResponses.Inc()
		p.log.Debug("dropping stale feed response", "generation", gen, "current", p.gen)
		return
	}
	p.cancel = nil
	p.done = nil

	if err != nil {
		kind := backend.KindOf(err)
		if p.mode != model.AccessPublic || (kind != backend.KindAuthorizationDenied && kind != backend.KindRateLimited) {
			p.err = err
			p.setState(StateError)
			p.log.Warn("feed fetch failed", "mode", p.mode, "tag", p.tag, "kind", kind.String(), "error", err)
			return
		}
		metrics.FeedCoercedErrors.WithLabelValues(kind.String()).Inc()
		page = model.FeedPage{}
	}

	p.pages = append(p.pages, page)
	if page.Exhausted() {
		p.setState(StateExhausted)
	} else {
		p.setState(StateIdle)
	}
}

// setState moves to next. Callers hold p.mu.
func (p *Pager) setState(next State) {
	if !IsTransitionAllowed(p.state, next) {
		p.log.Error("invalid feed state transition", "from", p.state, "to", next)
	}
	p.state = next
}

// ── Read side ─────────────────────────────────────────────────────────────

// restricted reports whether the access gate applies for s. Callers hold p.mu.
func (p *Pager) restricted(s session.State) bool {
	return p.mode == model.AccessPublic && !s.Authenticated()
}

// VisibleItems returns the loaded items, deduplicated by ID with the first
// occurrence kept, after the access gate for s.
func (p *Pager) VisibleItems(s session.State) []model.JobPosting {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible(s)
}

func (p *Pager) visible(s session.State) []model.JobPosting {
	seen := make(map[string]struct{})
	items := make([]model.JobPosting, 0)
	for _, page := range p.pages {
		for _, job := range page.Jobs {
			if _, dup := seen[job.ID]; dup {
				continue
			}
			seen[job.ID] = struct{}{}
			items = append(items, job)
		}
	}
	if p.restricted(s) && len(items) > PublicPreviewLimit {
		items = items[:PublicPreviewLimit]
	}
	return items
}

// Status is a snapshot of everything a view needs to render the feed.
type Status struct {
	State      State
	Tag        string
	Mode       model.AccessMode
	Items      []model.JobPosting
	Restricted bool
	HasMore    bool // a viewport signal would fetch another page
	Err        error
}

// ShowUnlock reports whether the "register to unlock" call to action applies.
func (s Status) ShowUnlock() bool { return s.Restricted }

// Empty reports whether the "no jobs" state applies.
func (s Status) Empty() bool {
	return !s.Restricted && len(s.Items) == 0 && s.Err == nil && !s.State.Fetching()
}

// Status returns a render snapshot for s.
func (p *Pager) Status(s session.State) Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	restricted := p.restricted(s)
	return Status{
		State:      p.state,
		Tag:        p.tag,
		Mode:       p.mode,
		Items:      p.visible(s),
		Restricted: restricted,
		HasMore:    p.active && !restricted && p.state == StateIdle,
		Err:        p.err,
	}
}

// HasNextPage reports whether the active query may still yield pages.
func (p *Pager) HasNextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active && p.state != StateExhausted
}

// State returns the current lifecycle state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Query returns the active tag and mode; ok is false before StartQuery.
func (p *Pager) Query() (tag string, mode model.AccessMode, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tag, p.mode, p.active
}

// Err returns the active query's error, if it is in the error state.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// NextTag returns the tag filter after clicking chip clicked while selected
// is active: clicking the active chip clears the filter.
func NextTag(selected, clicked string) string {
	if selected == clicked {
		return ""
	}
	return clicked
}

// ErrorMessage returns the text shown in the feed's error banner.
func ErrorMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return "Please try again later."
}
