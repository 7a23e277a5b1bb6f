package crawler

import (
	"sync"

	"github.com/use-agent/maisonscan/models"
)

// Stats holds the run counters. The listing counter doubles as the
// quota gate: reservation and increment happen under one lock, so the
// emitted-listing count never exceeds the quota no matter how many
// workers race on the last slots.
type Stats struct {
	mu          sync.Mutex
	maxListings int // 0 means unbounded
	counters    models.StatsSnapshot
}

func newStats(maxListings int) *Stats {
	return &Stats{maxListings: maxListings}
}

// TryReserveListing claims one output slot. It returns false when the
// quota is already exhausted; the caller must drop the record.
func (s *Stats) TryReserveListing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxListings > 0 && s.counters.ListingsScraped >= s.maxListings {
		return false
	}
	s.counters.ListingsScraped++
	return true
}

// ReleaseListing returns a slot claimed by TryReserveListing whose
// record was never persisted.
func (s *Stats) ReleaseListing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counters.ListingsScraped > 0 {
		s.counters.ListingsScraped--
	}
}

// QuotaReached reports whether the output quota is exhausted. Used to
// stop scheduling new work early; emission still goes through
// TryReserveListing.
func (s *Stats) QuotaReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxListings > 0 && s.counters.ListingsScraped >= s.maxListings
}

func (s *Stats) AddFiltered() {
	s.mu.Lock()
	s.counters.ListingsFiltered++
	s.mu.Unlock()
}

func (s *Stats) AddPage() {
	s.mu.Lock()
	s.counters.PagesScraped++
	s.mu.Unlock()
}

func (s *Stats) AddError() {
	s.mu.Lock()
	s.counters.Errors++
	s.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() models.StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}
