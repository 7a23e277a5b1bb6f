package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/use-agent/maisonscan/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxResponseBodyBytes caps fetched page bodies.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// HTTPFetcher performs plain HTTP requests with a Chrome TLS fingerprint
// (utls). It is the fast path for server-rendered listing detail pages.
type HTTPFetcher struct {
	proxy string
}

// NewHTTPFetcher creates a new HTTP fetcher routing through the given
// proxy URL when non-empty.
func NewHTTPFetcher(proxy string) *HTTPFetcher {
	return &HTTPFetcher{proxy: proxy}
}

// Fetch retrieves the URL via plain HTTP with a Chrome TLS fingerprint.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *Request) (*Result, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, f.proxy)
		},
	}
	if f.proxy != "" {
		proxyURL, err := url.Parse(f.proxy)
		if err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeInvalidInput, "httpfetch: build request", err)
	}
	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "fr-CA,fr;q=0.9,en;q=0.8")
	httpReq.Header.Set("Cache-Control", "no-cache")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewCrawlError(models.ErrCodeTimeout, "httpfetch: request timed out", err)
		}
		return nil, models.NewCrawlError(models.ErrCodeNavigation, "httpfetch: request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewCrawlError(models.ErrCodeNavigation,
			fmt.Sprintf("httpfetch: HTTP %d for %s", resp.StatusCode, req.URL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeNavigation, "httpfetch: read body", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		HTML:       string(body),
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Engine:     "http",
	}, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr, proxy string) (net.Conn, error) {
	var rawConn net.Conn
	var err error

	dialer := &net.Dialer{}

	if proxy != "" {
		proxyURL, parseErr := url.Parse(proxy)
		if parseErr == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			socksConn, socksErr := dialer.DialContext(ctx, "tcp", proxyURL.Host)
			if socksErr != nil {
				return nil, fmt.Errorf("socks5 dial: %w", socksErr)
			}
			rawConn = socksConn
		}
	}

	if rawConn == nil {
		rawConn, err = dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{
		ServerName: host,
	}, tls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// NeedsBrowser decides whether an HTTP-fetched body likely needs JS
// rendering (SPA shell, noscript warnings, script-heavy empty page).
func NeedsBrowser(body string) bool {
	bodyText := extractVisibleText(body)
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(body)
	if strings.Contains(lower, `<div id="root"></div>`) ||
		strings.Contains(lower, `<div id="app"></div>`) ||
		strings.Contains(lower, `<div id="__next"></div>`) {
		return true
	}
	if reNoscript.MatchString(lower) {
		return true
	}
	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}
	return false
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?|activez)\s+javascript`)

// extractVisibleText extracts the visible text from within <body>,
// stripping all tags and <script>/<style> content. Used for the
// needs-browser heuristic only.
func extractVisibleText(body string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader([]byte(body)))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
