package web

import (
	"net/http"
	"strings"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/session"
)

// ── User auth ─────────────────────────────────────────────────────────────

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.views.page(w, http.StatusOK, "register.html", basePage("Register", sessionFrom(r.Context()).State))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	rs := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	reg := backend.Registration{
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		Password:  r.PostForm.Get("password"),
		FirstName: strings.TrimSpace(r.PostForm.Get("firstName")),
		LastName:  strings.TrimSpace(r.PostForm.Get("lastName")),
	}
	if err := s.backend.Register(r.Context(), reg); err != nil {
		data := basePage("Register", rs.State)
		data.Error = backend.UserMessage(err)
		data.Form = map[string]string{"email": reg.Email, "firstName": reg.FirstName, "lastName": reg.LastName}
		s.views.page(w, formStatus(err), "register.html", data)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	data := basePage("Log in", sessionFrom(r.Context()).State)
	if r.URL.Query().Get("registered") != "" {
		data.Notice = "Account created. Please log in."
	}
	s.views.page(w, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	rs := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	token, err := s.backend.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		data := basePage("Log in", rs.State)
		data.Error = backend.UserMessage(err)
		data.Form = map[string]string{"email": email}
		s.views.page(w, formStatus(err), "login.html", data)
		return
	}

	if !s.saveSession(w, r, rs.ID, session.State{Credential: token, Role: session.RoleUser}, "login.html") {
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ── Admin auth ────────────────────────────────────────────────────────────

func (s *Server) handleAdminLoginForm(w http.ResponseWriter, r *http.Request) {
	s.views.page(w, http.StatusOK, "admin_login.html", basePage("Admin sign in", sessionFrom(r.Context()).State))
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	rs := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	data := basePage("Admin sign in", rs.State)
	data.Form = map[string]string{"email": email}
	if err := s.backend.RequestMagicLink(r.Context(), email); err != nil {
		data.Error = backend.UserMessage(err)
		s.views.page(w, formStatus(err), "admin_login.html", data)
		return
	}

	data.Sent = true
	s.views.page(w, http.StatusOK, "admin_login.html", data)
}

func (s *Server) handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	rs := sessionFrom(r.Context())
	data := basePage("Admin sign in", rs.State)

	token := r.URL.Query().Get("token")
	if token == "" {
		data.Error = "Invalid link."
		s.views.page(w, http.StatusBadRequest, "admin_verify.html", data)
		return
	}

	credential, err := s.backend.VerifyMagicLink(r.Context(), token)
	if err != nil {
		data.Error = backend.UserMessage(err)
		s.views.page(w, formStatus(err), "admin_verify.html", data)
		return
	}

	if !s.saveSession(w, r, rs.ID, session.State{Credential: credential, Role: session.RoleAdmin}, "admin_verify.html") {
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// ── Helpers ───────────────────────────────────────────────────────────────

// saveSession persists st for sid. On failure it renders page with an error
// and returns false.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sid string, st session.State, page string) bool {
	if err := s.sessions.Save(r.Context(), sid, st); err != nil {
		s.log.Error("session save failed", "error", err)
		data := basePage("", session.State{})
		data.Error = "Could not start your session. Please try again."
		s.views.page(w, http.StatusInternalServerError, page, data)
		return false
	}
	s.refreshCookie(w, sid)
	return true
}

// endSession clears the stored record and forgets the visitor's pagers.
func (s *Server) endSession(r *http.Request) {
	rs := sessionFrom(r.Context())
	if err := s.sessions.Clear(r.Context(), rs.ID); err != nil {
		s.log.Warn("session clear failed", "error", err)
	}
	s.pagers.Drop(rs.ID)
}

func (s *Server) refreshCookie(w http.ResponseWriter, sid string) {
	session.SetCookie(w, sid, s.sessionTTL, s.cookieSecure)
}
