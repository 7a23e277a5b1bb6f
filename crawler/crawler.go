// Package crawler schedules the crawl: a bounded worker pool pulls
// tasks off a deduplicating frontier, fetches pages through the
// renderer, extracts and filters listings, and emits records to the
// sink under a global output quota.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/maisonscan/extract"
	"github.com/use-agent/maisonscan/filter"
	"github.com/use-agent/maisonscan/models"
	"github.com/use-agent/maisonscan/renderer"
	"github.com/use-agent/maisonscan/searchurl"
	"github.com/use-agent/maisonscan/sink"
)

// Options configures a Crawler.
type Options struct {
	Fetcher renderer.Fetcher
	Sink    sink.Sink

	Filter      filter.Spec
	Transaction models.TransactionType

	// IncludeDetails fetches each listing's own page; when false,
	// records are emitted from search-card summaries alone.
	IncludeDetails bool

	// IncludeImages keeps image URLs in the output records.
	IncludeImages bool

	// MaxListings is the global output quota; 0 means unbounded.
	MaxListings int

	// MaxConcurrency bounds the worker pool; values < 1 become 1.
	MaxConcurrency int

	// MaxRetries is the per-task retry budget after the first attempt.
	MaxRetries int

	// TaskTimeout is the wall-clock budget for one fetch attempt.
	TaskTimeout time.Duration

	// RetryBaseDelay is the first retry backoff; it doubles per attempt.
	RetryBaseDelay time.Duration

	// RequestsPerSecond and RequestBurst feed the shared rate limiter.
	// A zero rate disables limiting.
	RequestsPerSecond float64
	RequestBurst      int
}

// Crawler runs one crawl from seed search pages to a drained frontier.
type Crawler struct {
	opts     Options
	frontier *frontier
	stats    *Stats
	limiter  *rate.Limiter
	now      func() time.Time
}

// New creates a Crawler. Run may be called once.
func New(opts Options) *Crawler {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.RequestBurst < 1 {
		opts.RequestBurst = 1
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.RequestBurst)
	}

	return &Crawler{
		opts:     opts,
		frontier: newFrontier(),
		stats:    newStats(opts.MaxListings),
		limiter:  limiter,
		now:      time.Now,
	}
}

// Stats exposes the live run counters.
func (c *Crawler) Stats() *Stats {
	return c.stats
}

// Seed enqueues the first search page for each seed URL. Duplicate
// seeds collapse into one task.
func (c *Crawler) Seed(seeds []Task) int {
	accepted := 0
	for i := range seeds {
		t := seeds[i]
		t.Kind = TaskSearchPage
		if t.Page < 1 {
			t.Page = 1
		}
		if c.frontier.Push(&t) {
			accepted++
		}
	}
	return accepted
}

// Run processes the frontier until it drains or ctx is cancelled. On
// cancellation, in-flight tasks finish their current attempt and queued
// tasks are discarded; Run then returns ctx's error.
func (c *Crawler) Run(ctx context.Context) error {
	c.frontier.closeIfIdle()

	done := make(chan struct{})
	for i := 0; i < c.opts.MaxConcurrency; i++ {
		go c.worker(ctx, i, done)
	}
	for i := 0; i < c.opts.MaxConcurrency; i++ {
		<-done
	}
	return ctx.Err()
}

func (c *Crawler) worker(ctx context.Context, id int, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	log := slog.With("worker", id)
	for {
		task, ok := c.frontier.Pop()
		if !ok {
			return
		}
		if ctx.Err() != nil || c.stats.QuotaReached() {
			// Cancelled, or the quota filled while this task sat queued.
			// Either way the fetch is pointless.
			c.frontier.Done()
			continue
		}
		c.process(ctx, log, task)
	}
}

// process runs one attempt of a task and decides its fate: success,
// retry with backoff, or terminal failure with exactly one error record.
func (c *Crawler) process(ctx context.Context, log *slog.Logger, task *Task) {
	err := c.attempt(ctx, log, task)
	if err == nil {
		c.frontier.Done()
		return
	}

	task.Attempts++
	if ctx.Err() == nil && task.Attempts <= c.opts.MaxRetries {
		delay := c.opts.RetryBaseDelay << (task.Attempts - 1)
		log.Warn("task failed, retrying",
			"kind", task.Kind.String(), "url", task.URL,
			"attempt", task.Attempts, "delay", delay, "error", err)
		time.AfterFunc(delay, func() { c.frontier.Requeue(task) })
		return
	}

	log.Error("task failed terminally",
		"kind", task.Kind.String(), "url", task.URL,
		"attempts", task.Attempts, "error", err)
	c.stats.AddError()
	record := &models.ErrorRecord{
		URL:      task.URL,
		Code:     models.ErrorCode(err),
		Message:  err.Error(),
		Attempts: task.Attempts,
		FailedAt: c.now().UTC(),
	}
	if sinkErr := c.opts.Sink.WriteError(record); sinkErr != nil {
		log.Error("writing error record failed", "url", task.URL, "error", sinkErr)
	}
	c.frontier.Done()
}

func (c *Crawler) attempt(ctx context.Context, log *slog.Logger, task *Task) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.NewCrawlError(models.ErrCodeTimeout, "rate limiter wait aborted", err)
		}
	}

	taskCtx := ctx
	if c.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, c.opts.TaskTimeout)
		defer cancel()
	}

	switch task.Kind {
	case TaskSearchPage:
		return c.crawlSearchPage(taskCtx, log, task)
	case TaskDetailPage:
		return c.crawlDetailPage(taskCtx, log, task)
	default:
		return models.NewCrawlError(models.ErrCodeInvalidInput, "unknown task kind", nil)
	}
}

// crawlSearchPage fetches one results page, schedules its cards, and
// chains the next page while results keep coming and the quota holds.
func (c *Crawler) crawlSearchPage(ctx context.Context, log *slog.Logger, task *Task) error {
	result, err := c.opts.Fetcher.Fetch(ctx, &renderer.Request{
		URL:         task.URL,
		NeedsRender: true,
	})
	if err != nil {
		return err
	}

	page, err := extract.ParseSearchPage(result.HTML, result.FinalURL)
	if err != nil {
		return err
	}
	c.stats.AddPage()
	log.Info("search page scraped",
		"region", task.Region, "page", task.Page,
		"cards", len(page.Summaries), "engine", result.Engine)

	// An empty page ends this region's pagination: probing further pages
	// past the last one would loop on sites that echo the page parameter.
	if len(page.Summaries) == 0 {
		return nil
	}

	fresh := 0
	for i := range page.Summaries {
		if c.stats.QuotaReached() {
			return nil
		}
		if c.scheduleListing(log, page.Summaries[i]) {
			fresh++
		}
	}

	if c.stats.QuotaReached() {
		return nil
	}
	nextURL := page.NextURL
	if nextURL == "" {
		// No next link: fall back to the page parameter, but only while
		// pages still contribute unseen listings. A site that echoes the
		// last page for any page number would otherwise never terminate.
		if fresh == 0 {
			return nil
		}
		nextURL = searchurl.PageURL(task.URL, task.Page+1)
	}
	c.frontier.Push(&Task{
		Kind:   TaskSearchPage,
		URL:    nextURL,
		Region: task.Region,
		Page:   task.Page + 1,
	})
	return nil
}

// scheduleListing routes one discovered card. The range bounds are
// checked against the summary right away, which spares a detail fetch
// per rejected card; the property-type check waits for the merged
// record, where the type label is authoritative. Returns true when the
// card's URL had not been seen before.
func (c *Crawler) scheduleListing(log *slog.Logger, summary models.ListingSummary) bool {
	provisional := extract.Merge(summary, nil, c.opts.Transaction)
	if !filter.MatchesBounds(&provisional, c.opts.Filter) {
		if c.frontier.MarkSeen(summary.SourceURL) {
			c.stats.AddFiltered()
			return true
		}
		return false
	}

	if c.opts.IncludeDetails {
		return c.frontier.Push(&Task{
			Kind:    TaskDetailPage,
			URL:     summary.SourceURL,
			Summary: summary,
		})
	}

	if !c.frontier.MarkSeen(summary.SourceURL) {
		return false
	}
	if !filter.Matches(&provisional, c.opts.Filter) {
		c.stats.AddFiltered()
		return true
	}
	c.emit(log, provisional)
	return true
}

// crawlDetailPage fetches one listing page, merges it with the summary
// that discovered it, and emits the record if it passes the filters.
func (c *Crawler) crawlDetailPage(ctx context.Context, log *slog.Logger, task *Task) error {
	result, err := c.opts.Fetcher.Fetch(ctx, &renderer.Request{URL: task.URL})
	if err != nil {
		return err
	}

	detail, err := extract.ParseDetailPage(result.HTML, result.FinalURL, c.now())
	if err != nil {
		return err
	}

	record := extract.Merge(task.Summary, detail, c.opts.Transaction)
	if !filter.Matches(&record, c.opts.Filter) {
		c.stats.AddFiltered()
		log.Debug("listing filtered out", "url", task.URL)
		return nil
	}
	c.emit(log, record)
	return nil
}

// emit writes one record, re-verifying the quota and claiming the slot
// in one step so concurrent workers cannot overshoot.
func (c *Crawler) emit(log *slog.Logger, record models.NormalizedListing) {
	if !c.opts.IncludeImages {
		record.Images = nil
	}
	if !c.stats.TryReserveListing() {
		log.Debug("quota reached, dropping listing", "url", record.URL)
		return
	}
	if err := c.opts.Sink.WriteListing(&record); err != nil {
		c.stats.ReleaseListing()
		c.stats.AddError()
		log.Error("writing listing failed", "url", record.URL, "error", err)
		return
	}
	log.Info("listing emitted", "url", record.URL, "price", record.PriceFormatted)
}
