package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/maisonscan/models"
)

// CSVWriter writes a flattened copy of the listing records to a CSV
// file. Error records are not representable in the flat schema and are
// skipped. Safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

var csvHeader = []string{
	"external_id", "url", "title", "price", "property_type",
	"transaction_type", "bedrooms", "bathrooms", "living_area",
	"lot_size", "year_built", "street", "city", "region", "postal_code",
	"mls_number", "scraped_at",
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

func (c *CSVWriter) WriteListing(listing *models.NormalizedListing) error {
	row := []string{
		listing.ExternalID,
		listing.URL,
		listing.Title,
		intOrEmpty(listing.Price),
		listing.PropertyType,
		string(listing.TransactionType),
		intOrEmpty(listing.Bedrooms),
		intOrEmpty(listing.Bathrooms),
		intOrEmpty(listing.LivingArea),
		intOrEmpty(listing.LotSize),
		intOrEmpty(listing.YearBuilt),
		listing.Address.Street,
		listing.Address.City,
		listing.Address.Region,
		listing.Address.PostalCode,
		listing.MLSNumber,
		listing.ScrapedAt.Format(time.RFC3339),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// WriteError is a no-op: error records only go to the JSONL sink.
func (c *CSVWriter) WriteError(*models.ErrorRecord) error {
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
