package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/use-agent/maisonscan/models"
)

// PostgresWriter persists listings and error records to PostgreSQL. The
// sink is streaming: each record is inserted as it arrives, with URL
// conflicts ignored so repeated runs stay idempotent.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id               SERIAL PRIMARY KEY,
			external_id      VARCHAR(64)  NOT NULL DEFAULT '',
			url              TEXT         UNIQUE NOT NULL,
			title            TEXT         NOT NULL DEFAULT '',
			price            INTEGER,
			property_type    VARCHAR(100) NOT NULL DEFAULT '',
			transaction_type VARCHAR(20)  NOT NULL DEFAULT '',
			bedrooms         INTEGER,
			bathrooms        INTEGER,
			living_area      INTEGER,
			lot_size         INTEGER,
			year_built       INTEGER,
			city             TEXT         NOT NULL DEFAULT '',
			region           TEXT         NOT NULL DEFAULT '',
			postal_code      VARCHAR(10)  NOT NULL DEFAULT '',
			mls_number       VARCHAR(32)  NOT NULL DEFAULT '',
			record           JSONB        NOT NULL,
			scraped_at       TIMESTAMPTZ  NOT NULL,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price         ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_city          ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
		CREATE INDEX IF NOT EXISTS idx_listings_bedrooms      ON listings(bedrooms);

		CREATE TABLE IF NOT EXISTS crawl_errors (
			id         SERIAL PRIMARY KEY,
			url        TEXT         NOT NULL,
			code       VARCHAR(40)  NOT NULL,
			message    TEXT         NOT NULL DEFAULT '',
			attempts   INTEGER      NOT NULL DEFAULT 0,
			failed_at  TIMESTAMPTZ  NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// Clear deletes all stored listings and error records.
func (pw *PostgresWriter) Clear() error {
	if _, err := pw.db.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear listings: %w", err)
	}
	if _, err := pw.db.Exec("DELETE FROM crawl_errors"); err != nil {
		return fmt.Errorf("postgres: clear errors: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) WriteListing(listing *models.NormalizedListing) error {
	record, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("postgres: marshal record: %w", err)
	}

	_, err = pw.db.Exec(`
		INSERT INTO listings (
			external_id, url, title, price, property_type, transaction_type,
			bedrooms, bathrooms, living_area, lot_size, year_built,
			city, region, postal_code, mls_number, record, scraped_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (url) DO NOTHING
	`,
		listing.ExternalID, listing.URL, listing.Title, listing.Price,
		listing.PropertyType, string(listing.TransactionType),
		listing.Bedrooms, listing.Bathrooms, listing.LivingArea,
		listing.LotSize, listing.YearBuilt,
		listing.Address.City, listing.Address.Region, listing.Address.PostalCode,
		listing.MLSNumber, record, listing.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert listing: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) WriteError(rec *models.ErrorRecord) error {
	_, err := pw.db.Exec(`
		INSERT INTO crawl_errors (url, code, message, attempts, failed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, rec.URL, rec.Code, rec.Message, rec.Attempts, rec.FailedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert error record: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
