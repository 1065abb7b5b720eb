package storage

import (
	"context"
	"time"
)

// SeenStore remembers keys for a limited time.
type SeenStore interface {
	// MarkIfNew records key with the given ttl and reports whether it was absent.
	MarkIfNew(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget drops key, undoing a mark whose follow-up action did not happen.
	Forget(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// OfferStorage holds offer rows written by scrapers and importers.
type OfferStorage interface {
	// LoadOffers returns all rows of one source.
	LoadOffers(ctx context.Context, source string) ([]OfferRecord, error)

	// StoreOffers upserts rows for one source.
	StoreOffers(ctx context.Context, source string, records []OfferRecord) error

	// DeleteStale removes rows of one source not updated since before.
	DeleteStale(ctx context.Context, source string, before time.Time) error

	Close() error
}

// OfferRecord is one row of the offers table.
type OfferRecord struct {
	MatchID     string
	MatchName   string
	Sport       string
	Competition string
	Datetime    string
	Market      string
	Selection   string
	Odds        float64
	Bookmaker   string
}
