package web

import (
	"net/http"
	"net/url"
	"strconv"

	"nextfit/web-service/internal/feed"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.renderFeedPage(w, r, "landing.html", "", "/", model.AccessPublic)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderFeedPage(w, r, "dashboard.html", "Dashboard", "/dashboard", model.AccessPrivate)
}

// renderFeedPage starts a fresh query for the page's tag and renders the
// first page once it resolves.
func (s *Server) renderFeedPage(w http.ResponseWriter, r *http.Request, name, title, path string, mode model.AccessMode) {
	rs := sessionFrom(r.Context())
	tag := r.URL.Query().Get("tag")

	pager := s.pagers.Get(rs.ID, mode, rs.State)
	pager.StartQuery(tag, mode)
	if err := pager.Wait(r.Context()); err != nil && r.Context().Err() != nil {
		return
	}

	view := s.feedView(pager, rs.State, 0)
	view.Path = path
	view.Chips = chips(path, tag, s.tags.Load(r.Context(), rs.State.Credential))

	data := basePage(title, rs.State)
	data.Feed = view
	s.views.page(w, http.StatusOK, name, data)
}

// handleFeedMore is the viewport signal: it asks the pager for another page
// and returns the items from index `from` onwards.
func (s *Server) handleFeedMore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := model.ParseAccessMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	from := 0
	if raw := q.Get("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil || from < 0 {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
	}

	rs := sessionFrom(r.Context())
	if mode == model.AccessPrivate && !rs.State.Authenticated() {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	tag := q.Get("tag")
	pager := s.pagers.Get(rs.ID, mode, rs.State)
	if activeTag, activeMode, ok := pager.Query(); !ok || activeTag != tag || activeMode != mode {
		pager.StartQuery(tag, mode)
		from = 0
	} else {
		pager.RequestMore(true, rs.State)
	}
	if err := pager.Wait(r.Context()); err != nil && r.Context().Err() != nil {
		return
	}

	s.views.fragment(w, "feed-page", s.feedView(pager, rs.State, from))
}

// feedView snapshots the pager for rendering, starting at item index from.
func (s *Server) feedView(p *feed.Pager, st session.State, from int) *feedView {
	status := p.Status(st)
	items := status.Items
	if from > len(items) {
		from = len(items)
	}

	v := &feedView{Items: items[from:], Status: status}
	if status.HasMore {
		v.MoreURL = moreURL(status, len(items))
	}
	if status.Err != nil {
		v.RetryURL = retryURL(status)
	}
	return v
}

// retryURL reloads the full page for the feed's mode, which restarts the
// query with the same tag.
func retryURL(st feed.Status) string {
	path := "/"
	if st.Mode == model.AccessPrivate {
		path = "/dashboard"
	}
	if st.Tag != "" {
		path += "?" + url.Values{"tag": {st.Tag}}.Encode()
	}
	return path
}

func moreURL(st feed.Status, from int) string {
	q := url.Values{}
	q.Set("mode", string(st.Mode))
	q.Set("from", strconv.Itoa(from))
	if st.Tag != "" {
		q.Set("tag", st.Tag)
	}
	return "/feed/more?" + q.Encode()
}

// chips builds the tag filter links; clicking the selected tag clears it.
func chips(path, selected string, tags []string) []tagChip {
	out := make([]tagChip, 0, len(tags))
	for _, t := range tags {
		href := path
		if next := feed.NextTag(selected, t); next != "" {
			href += "?" + url.Values{"tag": {next}}.Encode()
		}
		out = append(out, tagChip{Label: t, Href: href, Active: t == selected})
	}
	return out
}
