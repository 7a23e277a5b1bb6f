package renderer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/maisonscan/config"
	"github.com/use-agent/maisonscan/models"
)

// Browser manages the global browser lifecycle and the page pool.
// It is safe for concurrent use.
type Browser struct {
	browser  *rod.Browser
	pagePool rod.Pool[rod.Page]
	cfg      config.BrowserConfig
}

// NewBrowser launches a headless browser and initialises the reusable
// page pool, sized to the crawl concurrency.
func NewBrowser(cfg config.BrowserConfig, maxPages int) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeRenderCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeRenderCrash, "failed to connect to browser", err)
	}

	if maxPages < 1 {
		maxPages = 1
	}
	return &Browser{
		browser:  browser,
		pagePool: rod.NewPagePool(maxPages),
		cfg:      cfg,
	}, nil
}

// Fetch navigates one pooled tab to the URL, waits for the DOM to
// settle plus the configured fixed delay, and returns the rendered HTML.
//
// Order matters: stealth JS, header overrides and the hijack router are
// installed before Navigate, because they only take effect for
// navigations that happen after they are mounted.
func (b *Browser) Fetch(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.NavigationTimeout+b.cfg.SettleDelay)
	defer cancel()

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeRenderCrash, "failed to acquire page from pool", err)
	}

	// Navigate away before returning the tab so retained DOM is freed
	// even when the request context has already expired.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}.Call(page)
	}

	router := setupHijack(page, b.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}

	// The site renders listing cards asynchronously with no completion
	// signal, so a fixed settle delay is the wait strategy here.
	if b.cfg.SettleDelay > 0 {
		time.Sleep(b.cfg.SettleDelay)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := req.URL
	if res, evalErr := p.Eval(`() => window.location.href`); evalErr == nil {
		if s := res.Value.Str(); s != "" {
			finalURL = s
		}
	}

	return &Result{
		HTML:     rawHTML,
		FinalURL: finalURL,
		Engine:   "browser",
	}, nil
}

// Close drains the page pool and kills the browser process. Call this
// on graceful shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("renderer shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	b.browser.MustClose()
	slog.Info("renderer shutdown complete")
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed CrawlErrors so the
// scheduler can classify them in error records.
func categorizeError(err error, msg string) *models.CrawlError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
