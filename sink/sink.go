// Package sink persists crawl output. Sinks are append-only: the
// scheduler hands over one record at a time and makes no ordering
// guarantees across concurrent tasks.
package sink

import (
	"errors"

	"github.com/use-agent/maisonscan/models"
)

// Sink is the interface any output backend must satisfy. Implementations
// must be safe for concurrent use.
type Sink interface {
	// WriteListing appends one normalized listing record.
	WriteListing(listing *models.NormalizedListing) error

	// WriteError appends one error record for a terminally failed task.
	WriteError(record *models.ErrorRecord) error

	Close() error
}

// Multi fans every record out to all configured sinks.
type Multi struct {
	sinks []Sink
}

// NewMulti combines the given sinks; nil entries are skipped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) WriteListing(listing *models.NormalizedListing) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteListing(listing); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) WriteError(record *models.ErrorRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteError(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
