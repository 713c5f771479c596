package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"

	"nextfit/web-service/internal/feed"
	"nextfit/web-service/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageFiles are the templates rendered inside the shared layout.
var pageFiles = []string{
	"landing.html",
	"dashboard.html",
	"login.html",
	"register.html",
	"admin_login.html",
	"admin_verify.html",
	"admin_dashboard.html",
}

// renderer owns one template set per page plus the shared partials.
type renderer struct {
	base  *template.Template
	pages map[string]*template.Template
}

func newRenderer(now func() time.Time) (*renderer, error) {
	strict := bluemonday.StrictPolicy()
	funcs := template.FuncMap{
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return humanize.RelTime(t, now(), "ago", "from now")
		},
		"snippet":   strict.Sanitize,
		"count":     func(n int) string { return humanize.Comma(int64(n)) },
		"canScrape": func(t model.JobTitle) bool { return t.CanScrape(now()) },
		"cooldown": func(t model.JobTitle) string {
			next := t.NextScrapeAt(now())
			if next.IsZero() {
				return ""
			}
			return humanize.RelTime(next, now(), "ago", "from now")
		},
		"feedError": feed.ErrorMessage,
	}

	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/feed.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &renderer{base: base, pages: make(map[string]*template.Template, len(pageFiles))}
	for _, name := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// page renders a full page with the given status.
func (r *renderer) page(w http.ResponseWriter, status int, name string, data *pageData) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown page template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	r.execute(w, status, t, "layout", data)
}

// fragment renders a named partial without the layout.
func (r *renderer) fragment(w http.ResponseWriter, name string, data any) {
	r.execute(w, http.StatusOK, r.base, name, data)
}

func (r *renderer) execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ── View models ───────────────────────────────────────────────────────────

// pageData is the root value handed to every page template.
type pageData struct {
	Title    string
	LoggedIn bool
	Admin    bool
	Notice   string
	Error    string
	Form     map[string]string
	Feed     *feedView
	Panel    *adminView
	Sent     bool
}

// feedView is what the feed partial needs for one render.
type feedView struct {
	Items    []model.JobPosting
	Status   feed.Status
	Chips    []tagChip
	Path     string // page the chips link back to
	MoreURL  string // viewport signal target, empty when nothing more
	RetryURL string // set when the feed is in the error state
}

type tagChip struct {
	Label  string
	Href   string
	Active bool
}

type adminView struct {
	Titles       []model.JobTitle
	Sources      []model.JobSource
	TitlesError  string
	SourcesError string
}
