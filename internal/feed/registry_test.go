package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextfit/web-service/internal/model"
)

func TestRegistry_GetReusesPerSessionAndMode(t *testing.T) {
	r := NewRegistry(newFakeFetcher())

	a := r.Get("s1", model.AccessPublic, anonymous)
	assert.Same(t, a, r.Get("s1", model.AccessPublic, anonymous))
	assert.NotSame(t, a, r.Get("s1", model.AccessPrivate, member))
	assert.NotSame(t, a, r.Get("s2", model.AccessPublic, anonymous))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_GetPublishesSessionState(t *testing.T) {
	f := newFakeFetcher()
	r := NewRegistry(f)

	p := r.Get("s1", model.AccessPublic, anonymous)
	p.StartQuery("", model.AccessPublic)
	c := f.next(t)
	assert.Equal(t, "", c.credential)
	c.respond(model.FeedPage{Jobs: jobs(1, 2), NextCursor: "j2"}, nil)
	require.NoError(t, wait(t, p))

	r.Get("s1", model.AccessPublic, member)
	require.True(t, p.FetchNextPage())
	assert.Equal(t, "tok", f.next(t).credential)
}

func TestRegistry_Drop(t *testing.T) {
	f := newFakeFetcher()
	r := NewRegistry(f)

	p := r.Get("s1", model.AccessPrivate, member)
	r.Get("s1", model.AccessPublic, member)
	r.Get("s2", model.AccessPublic, anonymous)
	p.StartQuery("", model.AccessPrivate)
	f.next(t)

	r.Drop("s1")
	assert.Equal(t, 1, r.Len())
	_, _, active := p.Query()
	assert.False(t, active, "dropped pager is closed")
	assert.NotSame(t, p, r.Get("s1", model.AccessPrivate, member))
}

func TestRegistry_Sweep(t *testing.T) {
	r := NewRegistry(newFakeFetcher())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Get("old", model.AccessPublic, anonymous)
	now = now.Add(20 * time.Minute)
	r.Get("fresh", model.AccessPublic, anonymous)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0, r.Sweep(30*time.Minute))
}
