package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTitles_TripleEnvelope(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/titles", r.URL.Path)
		assert.Equal(t, "Bearer admin", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data":{"data":{"jobTitles":[
			{"id":1,"title":"Go Developer","lastScrapedAt":"2026-03-01T10:00:00Z"},
			{"id":2,"title":"SRE"}]}}}`)
	})

	titles, err := c.ListTitles(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, int64(1), titles[0].ID)
	require.NotNil(t, titles[0].LastScrapedAt)
	assert.True(t, titles[0].LastScrapedAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, titles[1].LastScrapedAt)
}

func TestListSources_EmptyWhenMissing(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"data":{}}}`)
	})
	sources, err := c.ListSources(context.Background(), "admin")
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestAdminMutations(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.ContentLength > 0 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		calls = append(calls, call{r.Method, r.URL.Path, body})
		writeJSON(w, http.StatusOK, `{}`)
	})
	ctx := context.Background()

	require.NoError(t, c.AddTitle(ctx, "a", "Platform Engineer"))
	require.NoError(t, c.DeleteTitle(ctx, "a", 7))
	require.NoError(t, c.AddSource(ctx, "a", "LinkedIn", "https://linkedin.com/jobs"))
	require.NoError(t, c.DeleteSource(ctx, "a", 3))
	require.NoError(t, c.TriggerScrape(ctx, "a", 7))

	require.Len(t, calls, 5)
	assert.Equal(t, call{http.MethodPost, "/jobs/titles", map[string]any{"title": "Platform Engineer"}}, calls[0])
	assert.Equal(t, call{http.MethodDelete, "/jobs/titles/7", nil}, calls[1])
	assert.Equal(t, call{http.MethodPost, "/jobs/sources", map[string]any{"name": "LinkedIn", "url": "https://linkedin.com/jobs"}}, calls[2])
	assert.Equal(t, call{http.MethodDelete, "/jobs/sources/3", nil}, calls[3])
	assert.Equal(t, call{http.MethodPost, "/jobs/scrape", map[string]any{"jobId": float64(7)}}, calls[4])
}

func TestAdminMutation_Forbidden(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"message":"Forbidden resource"}`)
	})
	err := c.AddTitle(context.Background(), "user-token", "x")
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationDenied, KindOf(err))
	assert.Equal(t, "Forbidden resource", UserMessage(err))
}
