package crawler

import (
	"sync"
	"testing"
)

func TestStats_ReservationNeverOvershoots(t *testing.T) {
	stats := newStats(5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if stats.TryReserveListing() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Errorf("granted %d reservations, want exactly 5", granted)
	}
	if got := stats.Snapshot().ListingsScraped; got != 5 {
		t.Errorf("listingsScraped = %d, want 5", got)
	}
	if !stats.QuotaReached() {
		t.Error("quota should be reached")
	}
}

func TestStats_ZeroQuotaIsUnbounded(t *testing.T) {
	stats := newStats(0)
	for i := 0; i < 1000; i++ {
		if !stats.TryReserveListing() {
			t.Fatalf("reservation %d denied under unbounded quota", i)
		}
	}
	if stats.QuotaReached() {
		t.Error("unbounded quota must never report reached")
	}
}

func TestStats_ReleaseReturnsSlot(t *testing.T) {
	stats := newStats(1)
	if !stats.TryReserveListing() {
		t.Fatal("first reservation denied")
	}
	if stats.TryReserveListing() {
		t.Fatal("second reservation granted past quota")
	}
	stats.ReleaseListing()
	if !stats.TryReserveListing() {
		t.Error("reservation denied after release")
	}
}
