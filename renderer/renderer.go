// Package renderer fetches pages for the crawler. Two engines are
// available: a Chrome-fingerprinted plain-HTTP fetch for server-rendered
// pages, and a headless Rod browser for pages that render their content
// with JavaScript. The crawler only sees the Fetcher interface.
package renderer

import "context"

// Request describes one page fetch.
type Request struct {
	URL string

	// Headers are per-navigation header overrides.
	Headers map[string]string

	// NeedsRender forces the browser engine. Search-result pages set
	// this: the site populates listing cards asynchronously.
	NeedsRender bool
}

// Result is the outcome of a successful fetch.
type Result struct {
	HTML       string
	FinalURL   string
	StatusCode int
	Engine     string // "http" or "browser"
}

// Fetcher retrieves a page. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Result, error)
}
