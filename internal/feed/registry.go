package feed

import (
	"sync"
	"time"

	"nextfit/web-service/internal/metrics"
	"nextfit/web-service/internal/model"
	"nextfit/web-service/internal/session"
)

type registryKey struct {
	sid  string
	mode model.AccessMode
}

type registryEntry struct {
	pager    *Pager
	sess     *session.Observable
	lastUsed time.Time
}

// Registry holds one Pager per (session id, access mode).
type Registry struct {
	fetcher Fetcher
	now     func() time.Time

	mu      sync.Mutex
	entries map[registryKey]*registryEntry
}

// NewRegistry returns an empty registry whose pagers fetch through fetcher.
func NewRegistry(fetcher Fetcher) *Registry {
	return &Registry{
		fetcher: fetcher,
		now:     time.Now,
		entries: make(map[registryKey]*registryEntry),
	}
}

// Get returns the pager for sid and mode, creating it on first use. s is
// published to the pager so fetches issued later carry the current credential.
func (r *Registry) Get(sid string, mode model.AccessMode, s session.State) *Pager {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := registryKey{sid: sid, mode: mode}
	e, ok := r.entries[k]
	if !ok {
		sess := &session.Observable{}
		e = &registryEntry{pager: New(r.fetcher, sess), sess: sess}
		r.entries[k] = e
		metrics.ActivePagers.Set(float64(len(r.entries)))
	}
	e.sess.Set(s)
	e.lastUsed = r.now()
	return e.pager
}

// Drop closes and forgets every pager of sid.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, e := range r.entries {
		if k.sid == sid {
			e.pager.Close()
			delete(r.entries, k)
		}
	}
	metrics.ActivePagers.Set(float64(len(r.entries)))
}

// Sweep closes pagers unused for longer than idle and returns how many were
// removed.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	n := 0
	for k, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			e.pager.Close()
			delete(r.entries, k)
			n++
		}
	}
	metrics.ActivePagers.Set(float64(len(r.entries)))
	return n
}

// Len returns the number of pagers held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
