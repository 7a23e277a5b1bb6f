package models

import "time"

// StatsSnapshot is a point-in-time copy of the run counters.
type StatsSnapshot struct {
	ListingsScraped  int `json:"listingsScraped"`
	ListingsFiltered int `json:"listingsFiltered"`
	PagesScraped     int `json:"pagesScraped"`
	Errors           int `json:"errors"`
}

// RunReport is the final run report persisted once at shutdown.
type RunReport struct {
	StatsSnapshot
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	InputEcho  map[string]any `json:"inputEcho"`
}
