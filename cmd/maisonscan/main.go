package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/use-agent/maisonscan/config"
	"github.com/use-agent/maisonscan/crawler"
	"github.com/use-agent/maisonscan/filter"
	"github.com/use-agent/maisonscan/models"
	"github.com/use-agent/maisonscan/renderer"
	"github.com/use-agent/maisonscan/searchurl"
	"github.com/use-agent/maisonscan/sink"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("maisonscan starting",
		"searchType", cfg.Search.SearchType,
		"regions", strings.Join(cfg.Search.Regions, ","),
		"maxListings", cfg.Crawl.MaxListings,
		"concurrency", cfg.Crawl.MaxConcurrency,
	)

	// ── 3. Launch the browser and HTTP engines ──────────────────────
	browser, err := renderer.NewBrowser(cfg.Browser, cfg.Crawl.MaxConcurrency)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer browser.Close()

	httpFetcher := renderer.NewHTTPFetcher(cfg.Browser.Proxy)
	fetcher := renderer.NewClient(browser, httpFetcher, cfg.Browser.DetailViaHTTP)

	// ── 4. Open output sinks ────────────────────────────────────────
	out, err := buildSink(cfg.Output)
	if err != nil {
		slog.Error("failed to open output sinks", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("closing sinks failed", "error", err)
		}
	}()

	// ── 5. Build the filter spec and seed tasks ─────────────────────
	spec := buildFilterSpec(cfg)
	tx := models.TransactionSale
	if cfg.Search.SearchType == "rent" {
		tx = models.TransactionRental
	}

	cr := crawler.New(crawler.Options{
		Fetcher:           fetcher,
		Sink:              out,
		Filter:            spec,
		Transaction:       tx,
		IncludeDetails:    cfg.Search.IncludeDetails,
		IncludeImages:     cfg.Search.IncludeImages,
		MaxListings:       cfg.Crawl.MaxListings,
		MaxConcurrency:    cfg.Crawl.MaxConcurrency,
		MaxRetries:        cfg.Crawl.MaxRequestRetries,
		TaskTimeout:       cfg.Crawl.TaskTimeout,
		RetryBaseDelay:    cfg.Crawl.RetryBaseDelay,
		RequestsPerSecond: cfg.Crawl.RequestsPerSecond,
		RequestBurst:      cfg.Crawl.RequestBurst,
	})

	seeds := make([]crawler.Task, 0, len(cfg.Search.Regions))
	for _, region := range cfg.Search.Regions {
		url := searchurl.Build(searchurl.Query{
			Region:        region,
			SearchType:    cfg.Search.SearchType,
			Language:      cfg.Search.Language,
			Neighborhoods: cfg.Search.Neighborhoods,
			Features:      cfg.Search.Features,
			ListingAge:    cfg.Search.ListingAge,
			SortBy:        cfg.Search.SortBy,
			Filters:       spec,
		})
		seeds = append(seeds, crawler.Task{URL: url, Region: region, Page: 1})
	}
	accepted := cr.Seed(seeds)
	slog.Info("crawl seeded", "regions", len(cfg.Search.Regions), "seeds", accepted)

	// ── 6. Run with signal-based graceful shutdown ──────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now().UTC()
	if err := cr.Run(ctx); err != nil {
		slog.Warn("crawl interrupted", "error", err)
	}
	finishedAt := time.Now().UTC()

	// ── 7. Write the run report ─────────────────────────────────────
	stats := cr.Stats().Snapshot()
	report := &models.RunReport{
		StatsSnapshot: stats,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		InputEcho:     inputEcho(cfg),
	}
	if err := sink.WriteReport(cfg.Output.ReportPath, report); err != nil {
		slog.Error("writing run report failed", "error", err)
	}

	slog.Info("maisonscan finished",
		"listingsScraped", stats.ListingsScraped,
		"listingsFiltered", stats.ListingsFiltered,
		"pagesScraped", stats.PagesScraped,
		"errors", stats.Errors,
		"duration", finishedAt.Sub(startedAt).Round(time.Second).String(),
	)
}

// buildSink opens the JSONL sink plus the optional CSV and Postgres
// sinks and fans records out to all of them.
func buildSink(cfg config.OutputConfig) (sink.Sink, error) {
	jsonl, err := sink.NewJSONLWriter(cfg.JSONLPath)
	if err != nil {
		return nil, err
	}

	var csv sink.Sink
	if cfg.CSVPath != "" {
		w, err := sink.NewCSVWriter(cfg.CSVPath)
		if err != nil {
			_ = jsonl.Close()
			return nil, err
		}
		csv = w
	}

	var pg sink.Sink
	if cfg.PostgresHost != "" {
		w, err := sink.NewPostgresWriter(cfg.DSN())
		if err != nil {
			_ = jsonl.Close()
			if csv != nil {
				_ = csv.Close()
			}
			return nil, err
		}
		pg = w
	}

	return sink.NewMulti(jsonl, csv, pg), nil
}

func buildFilterSpec(cfg *config.Config) filter.Spec {
	f := cfg.Filters
	return filter.NewSpec(
		filter.Range{Min: f.MinPrice, Max: f.MaxPrice},
		filter.Range{Min: f.MinBedrooms, Max: f.MaxBedrooms},
		filter.Range{Min: f.MinBathrooms, Max: f.MaxBathrooms},
		filter.Range{Min: f.MinLivingArea, Max: f.MaxLivingArea},
		filter.Range{Min: f.MinLotSize, Max: f.MaxLotSize},
		filter.Range{Min: f.MinYearBuilt, Max: f.MaxYearBuilt},
		cfg.Search.PropertyTypes,
	)
}

// inputEcho records the effective run inputs in the report so a stored
// result can be traced back to the query that produced it.
func inputEcho(cfg *config.Config) map[string]any {
	return map[string]any{
		"searchType":     cfg.Search.SearchType,
		"regions":        cfg.Search.Regions,
		"neighborhoods":  cfg.Search.Neighborhoods,
		"propertyTypes":  cfg.Search.PropertyTypes,
		"language":       cfg.Search.Language,
		"listingAge":     cfg.Search.ListingAge,
		"minPrice":       cfg.Filters.MinPrice,
		"maxPrice":       cfg.Filters.MaxPrice,
		"minBedrooms":    cfg.Filters.MinBedrooms,
		"maxBedrooms":    cfg.Filters.MaxBedrooms,
		"maxListings":    cfg.Crawl.MaxListings,
		"includeDetails": cfg.Search.IncludeDetails,
		"includeImages":  cfg.Search.IncludeImages,
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
