package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/feed"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

// jobsCall records one ListJobs request.
type jobsCall struct {
	credential, cursor, tag string
}

// fakeBackend answers from canned data; nil funcs fall back to success.
type fakeBackend struct {
	mu        sync.Mutex
	jobsCalls []jobsCall
	pages     map[string]model.FeedPage // keyed by cursor
	jobsErr   error
	tags      []string

	registerErr error
	loginToken  string
	loginErr    error
	magicErr    error
	verifyToken string
	verifyErr   error

	titles    []model.JobTitle
	sources   []model.JobSource
	mutations []string
	mutateErr error
}

func (f *fakeBackend) ListJobs(_ context.Context, credential, cursor, tag string) (model.FeedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobsCalls = append(f.jobsCalls, jobsCall{credential, cursor, tag})
	if f.jobsErr != nil {
		return model.FeedPage{}, f.jobsErr
	}
	return f.pages[cursor], nil
}

func (f *fakeBackend) calls() []jobsCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]jobsCall(nil), f.jobsCalls...)
}

func (f *fakeBackend) ListTags(context.Context, string) ([]string, error) { return f.tags, nil }

func (f *fakeBackend) Register(context.Context, backend.Registration) error { return f.registerErr }

func (f *fakeBackend) Login(context.Context, string, string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeBackend) RequestMagicLink(context.Context, string) error { return f.magicErr }

func (f *fakeBackend) VerifyMagicLink(context.Context, string) (string, error) {
	return f.verifyToken, f.verifyErr
}

func (f *fakeBackend) ListTitles(context.Context, string) ([]model.JobTitle, error) {
	return f.titles, nil
}

func (f *fakeBackend) ListSources(context.Context, string) ([]model.JobSource, error) {
	return f.sources, nil
}

func (f *fakeBackend) mutate(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, op)
	return f.mutateErr
}

func (f *fakeBackend) AddTitle(_ context.Context, _, title string) error {
	return f.mutate("add-title:" + title)
}

func (f *fakeBackend) DeleteTitle(context.Context, string, int64) error {
	return f.mutate("delete-title")
}

func (f *fakeBackend) AddSource(_ context.Context, _, name, _ string) error {
	return f.mutate("add-source:" + name)
}

func (f *fakeBackend) DeleteSource(context.Context, string, int64) error {
	return f.mutate("delete-source")
}

func (f *fakeBackend) TriggerScrape(context.Context, string, int64) error {
	return f.mutate("scrape")
}

// memStore is an in-memory session.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string]session.State
}

func newMemStore() *memStore { return &memStore{data: make(map[string]session.State)} }

func (m *memStore) Load(_ context.Context, id string) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.data[id]
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

func (m *memStore) Save(_ context.Context, id string, st session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = st
	return nil
}

func (m *memStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memStore) get(id string) (session.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.data[id]
	return st, ok
}

// harness wires a Server around the fakes.
type harness struct {
	backend *fakeBackend
	store   *memStore
	pagers  *feed.Registry
	mux     *http.ServeMux
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, fb *fakeBackend, limiter *RateLimiter) *harness {
	t.Helper()
	store := newMemStore()
	pagers := feed.NewRegistry(fb)
	srv, err := NewServer(Options{
		Backend:    fb,
		Sessions:   store,
		Pagers:     pagers,
		Tags:       feed.NewTagLoader(fb, nil),
		Limiter:    limiter,
		SessionTTL: time.Hour,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	return &harness{backend: fb, store: store, pagers: pagers, mux: mux}
}

// login seeds a session and returns its id.
func (h *harness) login(st session.State) string {
	sid := session.NewID()
	h.store.data[sid] = st
	return sid
}

func (h *harness) do(method, target, sid string, form map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		vals := url.Values{}
		for k, v := range form {
			vals.Set(k, v)
		}
		req = httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

// postings builds jobs titled "Posting N".
func postings(from, n int) []model.JobPosting {
	out := make([]model.JobPosting, 0, n)
	for i := from; i < from+n; i++ {
		id := "j" + strconv.Itoa(i)
		out = append(out, model.JobPosting{ID: id, Title: "Posting " + strconv.Itoa(i) + ".", Link: "https://example.com/" + id})
	}
	return out
}
