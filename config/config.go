package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Search  SearchConfig
	Filters FilterConfig
	Crawl   CrawlConfig
	Browser BrowserConfig
	Output  OutputConfig
	Log     LogConfig
}

// SearchConfig describes what to search for.
type SearchConfig struct {
	// SearchType is "buy" or "rent".
	SearchType string // default: "buy"

	// Regions are the region names to seed the crawl with.
	Regions []string // default: ["Montreal"]

	// Neighborhoods narrow the search within the regions (URL hint).
	Neighborhoods []string

	// PropertyTypes are the accepted property-type categories.
	PropertyTypes []string

	// Language selects the site language, "fr" or "en".
	Language string // default: "fr"

	// Features are requested property features (URL hint).
	Features []string

	// ListingAge is "24h", "7days", "30days", "90days" or "any".
	ListingAge string // default: "any"

	// SortBy is passed through as a URL hint.
	SortBy string

	// IncludeDetails controls whether each discovered listing's own
	// page is fetched and merged into the output record.
	IncludeDetails bool // default: true

	// IncludeImages controls whether image URLs appear in the output.
	IncludeImages bool // default: true
}

// FilterConfig holds the numeric filter bounds. A value of 0 means
// unbounded on that side.
type FilterConfig struct {
	MinPrice      int
	MaxPrice      int
	MinBedrooms   int
	MaxBedrooms   int
	MinBathrooms  int
	MaxBathrooms  int
	MinLivingArea int
	MaxLivingArea int
	MinLotSize    int
	MaxLotSize    int
	MinYearBuilt  int
	MaxYearBuilt  int
}

// CrawlConfig controls the scheduler.
type CrawlConfig struct {
	// MaxListings is the global output quota.
	MaxListings int // default: 50

	// MaxConcurrency bounds the worker pool. The conservative default
	// keeps the request-rate signature low, it is not a throughput pick.
	MaxConcurrency int // default: 3

	// MaxRequestRetries is the per-task retry budget.
	MaxRequestRetries int // default: 2

	// TaskTimeout is the wall-clock budget for one task end-to-end.
	TaskTimeout time.Duration // default: 90s

	// RetryBaseDelay is the first retry backoff; it doubles per attempt.
	RetryBaseDelay time.Duration // default: 2s

	// RequestsPerSecond is the sustained navigation rate for the run.
	RequestsPerSecond float64 // default: 0.5

	// RequestBurst is the navigation rate limiter burst.
	RequestBurst int // default: 1
}

// BrowserConfig controls the Rod browser instance and the HTTP engine.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the outbound proxy URL for all requests.
	Proxy string

	// NavigationTimeout is the max time for a single navigation.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the fixed wait after navigation for the site's
	// asynchronously rendered listings. There is no completion signal
	// to wait on, so this is a bounded delay, not event-driven.
	SettleDelay time.Duration // default: 3s

	// BlockedResourceTypes lists resource types the browser never loads.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// DetailViaHTTP sends detail-page fetches through the fingerprinted
	// HTTP engine first, escalating to the browser only when the body
	// looks like a JS shell.
	DetailViaHTTP bool // default: true
}

// OutputConfig selects the output sinks.
type OutputConfig struct {
	// JSONLPath is the listings output file.
	JSONLPath string // default: "./output/listings.jsonl"

	// CSVPath, when set, additionally writes a CSV copy.
	CSVPath string

	// ReportPath is where the final run report is written.
	ReportPath string // default: "./output/report.json"

	// Postgres connection settings; the Postgres sink is enabled only
	// when PostgresHost is set.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads the .env file (when present) and the environment, and
// returns a populated Config with sane defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using system env vars")
	}

	return &Config{
		Search: SearchConfig{
			SearchType:     envOr("MAISONSCAN_SEARCH_TYPE", "buy"),
			Regions:        envSliceOr("MAISONSCAN_REGIONS", []string{"Montreal"}),
			Neighborhoods:  envSliceOr("MAISONSCAN_NEIGHBORHOODS", nil),
			PropertyTypes:  envSliceOr("MAISONSCAN_PROPERTY_TYPES", nil),
			Language:       envOr("MAISONSCAN_LANGUAGE", "fr"),
			Features:       envSliceOr("MAISONSCAN_FEATURES", nil),
			ListingAge:     envOr("MAISONSCAN_LISTING_AGE", "any"),
			SortBy:         os.Getenv("MAISONSCAN_SORT_BY"),
			IncludeDetails: envBoolOr("MAISONSCAN_INCLUDE_DETAILS", true),
			IncludeImages:  envBoolOr("MAISONSCAN_INCLUDE_IMAGES", true),
		},
		Filters: FilterConfig{
			MinPrice:      envIntOr("MAISONSCAN_MIN_PRICE", 0),
			MaxPrice:      envIntOr("MAISONSCAN_MAX_PRICE", 0),
			MinBedrooms:   envIntOr("MAISONSCAN_MIN_BEDROOMS", 0),
			MaxBedrooms:   envIntOr("MAISONSCAN_MAX_BEDROOMS", 0),
			MinBathrooms:  envIntOr("MAISONSCAN_MIN_BATHROOMS", 0),
			MaxBathrooms:  envIntOr("MAISONSCAN_MAX_BATHROOMS", 0),
			MinLivingArea: envIntOr("MAISONSCAN_MIN_LIVING_AREA", 0),
			MaxLivingArea: envIntOr("MAISONSCAN_MAX_LIVING_AREA", 0),
			MinLotSize:    envIntOr("MAISONSCAN_MIN_LOT_SIZE", 0),
			MaxLotSize:    envIntOr("MAISONSCAN_MAX_LOT_SIZE", 0),
			MinYearBuilt:  envIntOr("MAISONSCAN_MIN_YEAR_BUILT", 0),
			MaxYearBuilt:  envIntOr("MAISONSCAN_MAX_YEAR_BUILT", 0),
		},
		Crawl: CrawlConfig{
			MaxListings:       envIntOr("MAISONSCAN_MAX_LISTINGS", 50),
			MaxConcurrency:    envIntOr("MAISONSCAN_MAX_CONCURRENCY", 3),
			MaxRequestRetries: envIntOr("MAISONSCAN_MAX_RETRIES", 2),
			TaskTimeout:       envDurationOr("MAISONSCAN_TASK_TIMEOUT", 90*time.Second),
			RetryBaseDelay:    envDurationOr("MAISONSCAN_RETRY_BASE_DELAY", 2*time.Second),
			RequestsPerSecond: envFloatOr("MAISONSCAN_RATE_RPS", 0.5),
			RequestBurst:      envIntOr("MAISONSCAN_RATE_BURST", 1),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("MAISONSCAN_HEADLESS", true),
			NoSandbox:         envBoolOr("MAISONSCAN_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("MAISONSCAN_BROWSER_BIN"),
			Proxy:             os.Getenv("MAISONSCAN_PROXY"),
			NavigationTimeout: envDurationOr("MAISONSCAN_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:       envDurationOr("MAISONSCAN_SETTLE_DELAY", 3*time.Second),
			BlockedResourceTypes: envSliceOr("MAISONSCAN_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			DetailViaHTTP: envBoolOr("MAISONSCAN_DETAIL_VIA_HTTP", true),
		},
		Output: OutputConfig{
			JSONLPath:        envOr("MAISONSCAN_JSONL_PATH", "./output/listings.jsonl"),
			CSVPath:          os.Getenv("MAISONSCAN_CSV_PATH"),
			ReportPath:       envOr("MAISONSCAN_REPORT_PATH", "./output/report.json"),
			PostgresHost:     os.Getenv("POSTGRES_HOST"),
			PostgresPort:     envOr("POSTGRES_PORT", "5432"),
			PostgresUser:     envOr("POSTGRES_USER", "maisonscan"),
			PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
			PostgresDB:       envOr("POSTGRES_DB", "listings_db"),
			PostgresSSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
		},
		Log: LogConfig{
			Level:  envOr("MAISONSCAN_LOG_LEVEL", "info"),
			Format: envOr("MAISONSCAN_LOG_FORMAT", "json"),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (o OutputConfig) DSN() string {
	return "host=" + o.PostgresHost +
		" port=" + o.PostgresPort +
		" user=" + o.PostgresUser +
		" password=" + o.PostgresPassword +
		" dbname=" + o.PostgresDB +
		" sslmode=" + o.PostgresSSLMode
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
