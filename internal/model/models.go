// Package model defines the data structures shared by the web service.
// Everything here is a read-only projection of what the jobs backend owns.
package model

import (
	"fmt"
	"time"
)

// AccessMode selects which variant of the job feed a view renders.
type AccessMode string

const (
	// AccessPublic is the landing-page preview, gated for anonymous visitors.
	AccessPublic AccessMode = "public"
	// AccessPrivate is the authenticated dashboard feed, never gated.
	AccessPrivate AccessMode = "private"
)

// ParseAccessMode converts a raw query value to an AccessMode.
func ParseAccessMode(s string) (AccessMode, error) {
	switch m := AccessMode(s); m {
	case AccessPublic, AccessPrivate:
		return m, nil
	}
	return "", fmt.Errorf("unknown access mode %q", s)
}

// JobPosting is a single scraped listing as returned by GET /jobs.
// ID is opaque and doubles as the pagination cursor.
type JobPosting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Snippet   string    `json:"snippet"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FeedPage is one page of the job feed. An empty NextCursor means the
// backend has nothing further for the query.
type FeedPage struct {
	Jobs       []JobPosting `json:"jobs"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// Exhausted reports whether no page follows this one. An empty page never
// yields a cursor, whatever the backend says.
func (p FeedPage) Exhausted() bool {
	return p.NextCursor == "" || len(p.Jobs) == 0
}

// ScrapeCooldown is how long the admin panel waits before offering another
// scrape of the same title.
const ScrapeCooldown = 24 * time.Hour

// JobTitle is a title the backend scraper searches for.
type JobTitle struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	LastScrapedAt *time.Time `json:"lastScrapedAt,omitempty"`
}

// CanScrape reports whether the scrape button should be enabled at now.
// Titles that were never scraped are always eligible.
func (t JobTitle) CanScrape(now time.Time) bool {
	if t.LastScrapedAt == nil {
		return true
	}
	return now.Sub(*t.LastScrapedAt) >= ScrapeCooldown
}

// NextScrapeAt returns when the cooldown ends, or the zero time if the title
// can be scraped right away.
func (t JobTitle) NextScrapeAt(now time.Time) time.Time {
	if t.CanScrape(now) {
		return time.Time{}
	}
	return t.LastScrapedAt.Add(ScrapeCooldown)
}

// JobSource is a site the backend scraper crawls.
type JobSource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
