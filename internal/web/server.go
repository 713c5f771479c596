// Package web implements the server-rendered pages of the Next Fit site.
//
// Routes:
//
//	GET  /                                  → landing page, public feed (?tag=)
//	GET  /dashboard                         → user dashboard, private feed (?tag=)
//	GET  /feed/more                         → next slice of a feed as an HTML fragment
//	GET  /register, POST /register          → account creation
//	GET  /login, POST /login, POST /logout  → user sign in / out
//	GET  /admin/login, POST /admin/login    → magic link request
//	GET  /admin/verify                      → magic link landing
//	POST /admin/logout                      → admin sign out
//	GET  /admin/dashboard                   → titles and sources
//	POST /admin/titles                      → add a title
//	POST /admin/titles/{id}/delete          → delete a title
//	POST /admin/titles/{id}/scrape          → trigger a scrape
//	POST /admin/sources                     → add a source
//	POST /admin/sources/{id}/delete         → delete a source
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/feed"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

// Backend is the subset of *backend.Client the pages use.
type Backend interface {
	feed.Fetcher
	feed.TagSource

	Register(ctx context.Context, r backend.Registration) error
	Login(ctx context.Context, email, password string) (string, error)
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, token string) (string, error)

	ListTitles(ctx context.Context, credential string) ([]model.JobTitle, error)
	AddTitle(ctx context.Context, credential, title string) error
	DeleteTitle(ctx context.Context, credential string, id int64) error
	ListSources(ctx context.Context, credential string) ([]model.JobSource, error)
	AddSource(ctx context.Context, credential, name, sourceURL string) error
	DeleteSource(ctx context.Context, credential string, id int64) error
	TriggerScrape(ctx context.Context, credential string, titleID int64) error
}

// Options configures a Server.
type Options struct {
	Backend      Backend
	Sessions     session.Store
	Pagers       *feed.Registry
	Tags         *feed.TagLoader
	Limiter      *RateLimiter // nil disables rate limiting
	SessionTTL   time.Duration
	CookieSecure bool
	Now          func() time.Time // defaults to time.Now
}

// Server holds shared dependencies of the page handlers.
type Server struct {
	backend      Backend
	sessions     session.Store
	pagers       *feed.Registry
	tags         *feed.TagLoader
	limiter      *RateLimiter
	sessionTTL   time.Duration
	cookieSecure bool
	now          func() time.Time
	views        *renderer
	log          *slog.Logger
}

// NewServer parses the templates and returns a configured Server.
func NewServer(opts Options) (*Server, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	views, err := newRenderer(now)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return &Server{
		backend:      opts.Backend,
		sessions:     opts.Sessions,
		pagers:       opts.Pagers,
		tags:         opts.Tags,
		limiter:      opts.Limiter,
		sessionTTL:   opts.SessionTTL,
		cookieSecure: opts.CookieSecure,
		now:          now,
		views:        views,
		log:          slog.Default().With("component", "web"),
	}, nil
}

// RegisterRoutes mounts all page routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	page := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, logRequests(s.log, s.withSession(h)))
	}
	limited := func(pattern string, h http.HandlerFunc) {
		var next http.Handler = s.withSession(h)
		if s.limiter != nil {
			next = s.limiter.Middleware(next)
		}
		mux.Handle(pattern, logRequests(s.log, next))
	}

	page("GET /{$}", s.handleLanding)
	page("GET /dashboard", requireUser(s.handleDashboard))
	limited("GET /feed/more", s.handleFeedMore)

	page("GET /register", s.handleRegisterForm)
	limited("POST /register", s.handleRegister)
	page("GET /login", s.handleLoginForm)
	limited("POST /login", s.handleLogin)
	page("POST /logout", s.handleLogout)

	page("GET /admin/login", s.handleAdminLoginForm)
	limited("POST /admin/login", s.handleAdminLogin)
	limited("GET /admin/verify", s.handleAdminVerify)
	page("POST /admin/logout", s.handleAdminLogout)

	page("GET /admin/dashboard", requireAdmin(s.handleAdminDashboard))
	page("POST /admin/titles", requireAdmin(s.handleAddTitle))
	page("POST /admin/titles/{id}/delete", requireAdmin(s.handleDeleteTitle))
	page("POST /admin/titles/{id}/scrape", requireAdmin(s.handleScrapeTitle))
	page("POST /admin/sources", requireAdmin(s.handleAddSource))
	page("POST /admin/sources/{id}/delete", requireAdmin(s.handleDeleteSource))
}

// basePage fills the layout fields shared by every page.
func basePage(title string, st session.State) *pageData {
	return &pageData{Title: title, LoggedIn: st.Authenticated(), Admin: st.IsAdmin()}
}

// formStatus picks the response status for a failed form submission.
func formStatus(err error) int {
	switch backend.KindOf(err) {
	case backend.KindValidation:
		return http.StatusUnprocessableEntity
	case backend.KindAuthorizationDenied:
		return http.StatusUnauthorized
	case backend.KindRateLimited:
		return http.StatusTooManyRequests
	case backend.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
