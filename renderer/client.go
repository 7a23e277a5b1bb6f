package renderer

import (
	"context"
	"log/slog"
)

// Client is the Fetcher handed to the crawler. It escalates per request:
// pages flagged NeedsRender go straight to the browser; everything else
// tries the fingerprinted HTTP engine first and falls back to the
// browser when the body looks like an unrendered JS shell.
type Client struct {
	browser *Browser
	http    *HTTPFetcher

	// httpFirst enables the HTTP fast path for non-rendered requests.
	httpFirst bool
}

// NewClient wires the two engines. httpFetcher may be nil, in which
// case every request uses the browser.
func NewClient(browser *Browser, httpFetcher *HTTPFetcher, httpFirst bool) *Client {
	return &Client{
		browser:   browser,
		http:      httpFetcher,
		httpFirst: httpFirst && httpFetcher != nil,
	}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Result, error) {
	if req.NeedsRender || !c.httpFirst {
		return c.browser.Fetch(ctx, req)
	}

	result, err := c.http.Fetch(ctx, req)
	if err != nil {
		slog.Debug("http engine failed, escalating to browser", "url", req.URL, "error", err)
		return c.browser.Fetch(ctx, req)
	}
	if NeedsBrowser(result.HTML) {
		slog.Debug("http body looks unrendered, escalating to browser", "url", req.URL)
		return c.browser.Fetch(ctx, req)
	}
	return result, nil
}
