package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/use-agent/maisonscan/models"
)

// JSONLWriter appends one JSON object per line. Listings go to the main
// file; error records go to a sibling "<name>.errors.jsonl" file so the
// listings file stays wire-format clean. Safe for concurrent use.
type JSONLWriter struct {
	mu       sync.Mutex
	listings *os.File
	errors   *os.File
}

// NewJSONLWriter creates (or truncates) the output files. Intermediate
// directories are created automatically.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonl: create output dir: %w", err)
	}

	listings, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: create file %q: %w", path, err)
	}

	errPath := errorsPath(path)
	errFile, err := os.Create(errPath)
	if err != nil {
		_ = listings.Close()
		return nil, fmt.Errorf("jsonl: create file %q: %w", errPath, err)
	}

	return &JSONLWriter{listings: listings, errors: errFile}, nil
}

func (w *JSONLWriter) WriteListing(listing *models.NormalizedListing) error {
	return w.writeLine(w.listings, listing)
}

func (w *JSONLWriter) WriteError(record *models.ErrorRecord) error {
	return w.writeLine(w.errors, record)
}

func (w *JSONLWriter) writeLine(f *os.File, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("jsonl: marshal: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("jsonl: write: %w", err)
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	errListings := w.listings.Close()
	errErrors := w.errors.Close()
	if errListings != nil {
		return errListings
	}
	return errErrors
}

func errorsPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".errors" + ext
}

// WriteReport writes the final run report as a single JSON document.
func WriteReport(path string, report *models.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %q: %w", path, err)
	}
	return nil
}
