// Package session keeps the per-visitor {credential, role} record. The
// browser only holds an opaque session id cookie; the record itself lives in
// a server-side Store.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id.
const CookieName = "nextfit_session"

// Role is the kind of account a credential belongs to.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrNotFound is returned by stores when no record exists for a session id.
var ErrNotFound = errors.New("session not found")

// State is the session record read by every view.
type State struct {
	Credential string
	Role       Role
}

// Authenticated reports whether a credential is present.
func (s State) Authenticated() bool { return s.Credential != "" }

// IsAdmin reports whether the session may use the admin panel.
func (s State) IsAdmin() bool { return s.Authenticated() && s.Role == RoleAdmin }

// Store persists session state keyed by session id.
type Store interface {
	// Load returns ErrNotFound when the id has no record.
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, s State) error
	Clear(ctx context.Context, id string) error
}

// Observable holds the latest State seen for one visitor. It is written by
// the request path and read by components that outlive a request, such as a
// feed pager issuing fetches in the background.
type Observable struct {
	v atomic.Pointer[State]
}

// Get returns the current state; the zero State when nothing was set.
func (o *Observable) Get() State {
	if p := o.v.Load(); p != nil {
		return *p
	}
	return State{}
}

// Set replaces the current state.
func (o *Observable) Set(s State) { o.v.Store(&s) }

// NewID returns a fresh random session id.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id looks like an id produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// IDFromRequest returns the session id carried by r, if any.
func IDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || !ValidID(c.Value) {
		return "", false
	}
	return c.Value, true
}

// SetCookie writes the session cookie.
func SetCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
