package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Search.SearchType != "buy" {
		t.Errorf("SearchType = %q, want buy", cfg.Search.SearchType)
	}
	if len(cfg.Search.Regions) != 1 || cfg.Search.Regions[0] != "Montreal" {
		t.Errorf("Regions = %v, want [Montreal]", cfg.Search.Regions)
	}
	if cfg.Search.Language != "fr" {
		t.Errorf("Language = %q, want fr", cfg.Search.Language)
	}
	if !cfg.Search.IncludeDetails {
		t.Error("IncludeDetails should default to true")
	}
	if cfg.Crawl.MaxListings != 50 {
		t.Errorf("MaxListings = %d, want 50", cfg.Crawl.MaxListings)
	}
	if cfg.Crawl.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", cfg.Crawl.MaxConcurrency)
	}
	if cfg.Crawl.MaxRequestRetries != 2 {
		t.Errorf("MaxRequestRetries = %d, want 2", cfg.Crawl.MaxRequestRetries)
	}
	if cfg.Crawl.TaskTimeout != 90*time.Second {
		t.Errorf("TaskTimeout = %s, want 90s", cfg.Crawl.TaskTimeout)
	}
	if cfg.Filters.MinPrice != 0 || cfg.Filters.MaxPrice != 0 {
		t.Errorf("filter bounds = %d/%d, want 0/0 (unbounded)", cfg.Filters.MinPrice, cfg.Filters.MaxPrice)
	}
	if cfg.Output.JSONLPath != "./output/listings.jsonl" {
		t.Errorf("JSONLPath = %q", cfg.Output.JSONLPath)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAISONSCAN_SEARCH_TYPE", "rent")
	t.Setenv("MAISONSCAN_REGIONS", "Montreal, Laval , Rive-Sud")
	t.Setenv("MAISONSCAN_MAX_LISTINGS", "10")
	t.Setenv("MAISONSCAN_MIN_PRICE", "400000")
	t.Setenv("MAISONSCAN_TASK_TIMEOUT", "2m")
	t.Setenv("MAISONSCAN_INCLUDE_DETAILS", "false")
	t.Setenv("MAISONSCAN_RATE_RPS", "1.5")

	cfg := Load()

	if cfg.Search.SearchType != "rent" {
		t.Errorf("SearchType = %q, want rent", cfg.Search.SearchType)
	}
	want := []string{"Montreal", "Laval", "Rive-Sud"}
	if len(cfg.Search.Regions) != len(want) {
		t.Fatalf("Regions = %v, want %v", cfg.Search.Regions, want)
	}
	for i, r := range want {
		if cfg.Search.Regions[i] != r {
			t.Errorf("Regions[%d] = %q, want %q", i, cfg.Search.Regions[i], r)
		}
	}
	if cfg.Crawl.MaxListings != 10 {
		t.Errorf("MaxListings = %d, want 10", cfg.Crawl.MaxListings)
	}
	if cfg.Filters.MinPrice != 400000 {
		t.Errorf("MinPrice = %d, want 400000", cfg.Filters.MinPrice)
	}
	if cfg.Crawl.TaskTimeout != 2*time.Minute {
		t.Errorf("TaskTimeout = %s, want 2m", cfg.Crawl.TaskTimeout)
	}
	if cfg.Search.IncludeDetails {
		t.Error("IncludeDetails should be overridden to false")
	}
	if cfg.Crawl.RequestsPerSecond != 1.5 {
		t.Errorf("RequestsPerSecond = %f, want 1.5", cfg.Crawl.RequestsPerSecond)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAISONSCAN_MAX_LISTINGS", "many")
	t.Setenv("MAISONSCAN_TASK_TIMEOUT", "soon")
	t.Setenv("MAISONSCAN_HEADLESS", "maybe")

	cfg := Load()
	if cfg.Crawl.MaxListings != 50 {
		t.Errorf("MaxListings = %d, want default 50 on malformed input", cfg.Crawl.MaxListings)
	}
	if cfg.Crawl.TaskTimeout != 90*time.Second {
		t.Errorf("TaskTimeout = %s, want default 90s on malformed input", cfg.Crawl.TaskTimeout)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should keep its default on malformed input")
	}
}

func TestDSN(t *testing.T) {
	out := OutputConfig{
		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "maisonscan",
		PostgresPassword: "secret",
		PostgresDB:       "listings_db",
		PostgresSSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=maisonscan password=secret dbname=listings_db sslmode=disable"
	if got := out.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
