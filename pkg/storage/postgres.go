package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/models"
)

const listingsSchema = `
CREATE TABLE IF NOT EXISTS listings (
	auction_id    TEXT PRIMARY KEY,
	parcel_id     TEXT,
	address       TEXT,
	city          TEXT,
	zip           TEXT,
	status        TEXT,
	minimum_bid   NUMERIC,
	current_bid   NUMERIC,
	has_bids      BOOLEAN,
	closing_time  TIMESTAMPTZ,
	sev_value     NUMERIC,
	scraped_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertListing = `
INSERT INTO listings (
	auction_id, parcel_id, address, city, zip, status,
	minimum_bid, current_bid, has_bids, closing_time, sev_value,
	scraped_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
ON CONFLICT (auction_id) DO UPDATE SET
	status       = EXCLUDED.status,
	minimum_bid  = EXCLUDED.minimum_bid,
	current_bid  = EXCLUDED.current_bid,
	has_bids     = EXCLUDED.has_bids,
	closing_time = EXCLUDED.closing_time,
	sev_value    = EXCLUDED.sev_value,
	scraped_at   = EXCLUDED.scraped_at,
	updated_at   = now()`

// ListingArchive mirrors scraped listings into Postgres for ad-hoc SQL
// querying. The JSON documents on disk remain the system of record;
// archive failures are reported but never block a scrape run.
type ListingArchive struct {
	db     *sql.DB
	logger logger.Logger
}

// NewListingArchive connects to Postgres and ensures the schema.
func NewListingArchive(dsn string) (*ListingArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.Exec(listingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure listings schema: %w", err)
	}

	return &ListingArchive{db: db, logger: logger.GetLogger()}, nil
}

// ArchiveListings upserts one scrape run's records in a single
// transaction.
func (a *ListingArchive) ArchiveListings(records []*models.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertListing)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var closing interface{}
		if !r.ClosingTime.IsZero() {
			closing = r.ClosingTime
		}
		_, err := stmt.Exec(
			r.AuctionID, r.ParcelID, r.Address, r.City, r.Zip, r.Status,
			r.MinimumBidAmount, r.CurrentBidAmount, r.HasBids, closing,
			r.SEVValueAmount, r.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert listing %s: %w", r.AuctionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}

	a.logger.WithField("listings", len(records)).Debug("Archived listings to postgres")
	return nil
}

// Close releases the connection pool.
func (a *ListingArchive) Close() error {
	return a.db.Close()
}
