package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"nextfit/web-service/internal/backend"
)

// notices maps the ?notice= code set after a successful admin action.
var notices = map[string]string{
	"title-added":    "Job title added.",
	"title-deleted":  "Job title deleted.",
	"scrape-started": "Scrape started.",
	"source-added":   "Job source added.",
	"source-deleted": "Job source deleted.",
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderAdmin(w, r, http.StatusOK, notices[r.URL.Query().Get("notice")], "")
}

// renderAdmin loads both lists concurrently and renders the dashboard. A
// failed list shows its own inline error; the other still renders.
func (s *Server) renderAdmin(w http.ResponseWriter, r *http.Request, status int, notice, errMsg string) {
	st := sessionFrom(r.Context()).State
	panel := &adminView{}

	var g errgroup.Group
	g.Go(func() error {
		titles, err := s.backend.ListTitles(r.Context(), st.Credential)
		if err != nil {
			panel.TitlesError = backend.UserMessage(err)
			return nil
		}
		panel.Titles = titles
		return nil
	})
	g.Go(func() error {
		sources, err := s.backend.ListSources(r.Context(), st.Credential)
		if err != nil {
			panel.SourcesError = backend.UserMessage(err)
			return nil
		}
		panel.Sources = sources
		return nil
	})
	_ = g.Wait()

	data := basePage("Admin", st)
	data.Notice = notice
	data.Error = errMsg
	data.Panel = panel
	s.views.page(w, status, "admin_dashboard.html", data)
}

// adminAction runs op with the admin's credential, then redirects with
// notice on success or re-renders the dashboard with the error.
func (s *Server) adminAction(w http.ResponseWriter, r *http.Request, notice string, op func(ctx context.Context, credential string) error) {
	st := sessionFrom(r.Context()).State
	if err := op(r.Context(), st.Credential); err != nil {
		s.log.Warn("admin action failed", "path", r.URL.Path, "error", err)
		s.renderAdmin(w, r, formStatus(err), "", backend.UserMessage(err))
		return
	}
	http.Redirect(w, r, "/admin/dashboard?notice="+notice, http.StatusSeeOther)
}

func (s *Server) handleAddTitle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.PostForm.Get("title"))
	if title == "" {
		s.renderAdmin(w, r, http.StatusUnprocessableEntity, "", "Title is required.")
		return
	}
	s.adminAction(w, r, "title-added", func(ctx context.Context, credential string) error {
		return s.backend.AddTitle(ctx, credential, title)
	})
}

func (s *Server) handleDeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.adminAction(w, r, "title-deleted", func(ctx context.Context, credential string) error {
		return s.backend.DeleteTitle(ctx, credential, id)
	})
}

func (s *Server) handleScrapeTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.adminAction(w, r, "scrape-started", func(ctx context.Context, credential string) error {
		return s.backend.TriggerScrape(ctx, credential, id)
	})
}

func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostForm.Get("name"))
	sourceURL := strings.TrimSpace(r.PostForm.Get("url"))
	if name == "" || sourceURL == "" {
		s.renderAdmin(w, r, http.StatusUnprocessableEntity, "", "Name and URL are required.")
		return
	}
	s.adminAction(w, r, "source-added", func(ctx context.Context, credential string) error {
		return s.backend.AddSource(ctx, credential, name, sourceURL)
	})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.adminAction(w, r, "source-deleted", func(ctx context.Context, credential string) error {
		return s.backend.DeleteSource(ctx, credential, id)
	})
}

// pathID parses the {id} path segment, answering 404 when it is not a number.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
