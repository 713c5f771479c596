package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextfit/web-service/internal/backend"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

func TestRegister_SuccessRedirectsToLogin(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, nil)

	rec := h.do(http.MethodPost, "/register", "", map[string]string{
		"email": "a@b.c", "password": "pw", "firstName": "Ada", "lastName": "L",
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=1", rec.Header().Get("Location"))

	body := h.do(http.MethodGet, "/login?registered=1", "", nil).Body.String()
	assert.Contains(t, body, "Account created. Please log in.")
}

func TestRegister_ValidationShownInline(t *testing.T) {
	fb := &fakeBackend{registerErr: &backend.Error{Kind: backend.KindValidation, Status: 400, Message: "email must be an email"}}
	h := newHarness(t, fb, nil)

	rec := h.do(http.MethodPost, "/register", "", map[string]string{"email": "nope", "firstName": "Ada"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "email must be an email")
	assert.Contains(t, body, `value="Ada"`)
}

func TestLogin_StoresUserSession(t *testing.T) {
	h := newHarness(t, &fakeBackend{loginToken: "tok-1"}, nil)
	sid := session.NewID()

	rec := h.do(http.MethodPost, "/login", sid, map[string]string{"email": "a@b.c", "password": "pw"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	st, ok := h.store.get(sid)
	require.True(t, ok)
	assert.Equal(t, session.State{Credential: "tok-1", Role: session.RoleUser}, st)
}

func TestLogin_DeniedShownInline(t *testing.T) {
	fb := &fakeBackend{loginErr: &backend.Error{Kind: backend.KindAuthorizationDenied, Status: 401, Message: "Invalid credentials"}}
	h := newHarness(t, fb, nil)
	sid := session.NewID()

	rec := h.do(http.MethodPost, "/login", sid, map[string]string{"email": "a@b.c", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	_, ok := h.store.get(sid)
	assert.False(t, ok)
}

func TestLogout_ClearsSessionAndPagers(t *testing.T) {
	fb := &fakeBackend{pages: map[string]model.FeedPage{"": {Jobs: postings(1, 1)}}}
	h := newHarness(t, fb, nil)
	sid := h.login(member)
	h.do(http.MethodGet, "/dashboard", sid, nil)
	require.Equal(t, 1, h.pagers.Len())

	rec := h.do(http.MethodPost, "/logout", sid, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	_, ok := h.store.get(sid)
	assert.False(t, ok)
	assert.Equal(t, 0, h.pagers.Len())
	assert.Equal(t, "/login", h.do(http.MethodGet, "/dashboard", sid, nil).Header().Get("Location"))
}

func TestAdminLogin_MagicLinkSent(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, nil)

	rec := h.do(http.MethodPost, "/admin/login", "", map[string]string{"email": "boss@nextfit.io"})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Magic link sent! Check your email.")
	assert.Contains(t, body, "Try another email")
	assert.Contains(t, body, "boss@nextfit.io")
}

func TestAdminLogin_Failure(t *testing.T) {
	fb := &fakeBackend{magicErr: &backend.Error{Kind: backend.KindNotFound, Status: 404}}
	h := newHarness(t, fb, nil)

	rec := h.do(http.MethodPost, "/admin/login", "", map[string]string{"email": "x@y.z"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The requested resource was not found.")
	assert.NotContains(t, rec.Body.String(), "Magic link sent!")
}

func TestAdminVerify_MissingToken(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, nil)

	rec := h.do(http.MethodGet, "/admin/verify", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid link.")
}

func TestAdminVerify_StoresAdminSession(t *testing.T) {
	h := newHarness(t, &fakeBackend{verifyToken: "adm"}, nil)
	sid := session.NewID()

	rec := h.do(http.MethodGet, "/admin/verify?token=magic", sid, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	st, ok := h.store.get(sid)
	require.True(t, ok)
	assert.Equal(t, session.State{Credential: "adm", Role: session.RoleAdmin}, st)
}

func TestAdminVerify_ExpiredLink(t *testing.T) {
	fb := &fakeBackend{verifyErr: &backend.Error{Kind: backend.KindAuthorizationDenied, Status: 401, Message: "Token expired"}}
	h := newHarness(t, fb, nil)

	rec := h.do(http.MethodGet, "/admin/verify?token=old", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestAdminLogout(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, nil)
	sid := h.login(session.State{Credential: "adm", Role: session.RoleAdmin})

	rec := h.do(http.MethodPost, "/admin/logout", sid, nil)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	_, ok := h.store.get(sid)
	assert.False(t, ok)
}
