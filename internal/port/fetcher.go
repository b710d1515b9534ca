package port

import (
	"context"
	"strings"
	"time"
)

// FetchedPage is the outcome of fetching one URL. Body is decoded to
// UTF-8 before it reaches any analyzer.
type FetchedPage struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        string
	HTML        bool
	Elapsed     time.Duration
}

// Fetcher retrieves pages over HTTP(S). Implementations must set a
// descriptive user agent, bound redirects and enforce a timeout; non-2xx
// statuses and non-HTML content types surface as errors the caller
// absorbs as soft per-URL failures.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchedPage, error)

	// Robots returns the site's disallow rules for the crawler's user
	// agent, best-effort: a missing or unreadable robots.txt yields
	// rules that allow everything, never an error the crawl acts on.
	Robots(ctx context.Context, siteURL string) *RobotsRules
}

// RobotsRules holds parsed Disallow prefixes for one site.
type RobotsRules struct {
	Disallow []string
}

// Allows reports whether the given URL path may be crawled.
func (r *RobotsRules) Allows(path string) bool {
	if r == nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	for _, prefix := range r.Disallow {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
