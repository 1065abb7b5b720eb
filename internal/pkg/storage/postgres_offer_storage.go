package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Ensure PostgresOfferStorage implements OfferStorage
var _ OfferStorage = (*PostgresOfferStorage)(nil)

// PostgresOfferStorage reads scraped offers from the offers table.
type PostgresOfferStorage struct {
	db *sql.DB
}

// NewPostgresOfferStorage opens the connection and creates the schema if missing.
func NewPostgresOfferStorage(dsn string) (*PostgresOfferStorage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresOfferStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL offer storage initialized successfully")
	return s, nil
}

func (s *PostgresOfferStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS offers (
		id SERIAL PRIMARY KEY,
		source VARCHAR(100) NOT NULL,
		match_id VARCHAR(200) NOT NULL,
		match_name VARCHAR(500) NOT NULL DEFAULT '',
		sport VARCHAR(100) NOT NULL DEFAULT '',
		competition VARCHAR(300) NOT NULL DEFAULT '',
		datetime VARCHAR(50) NOT NULL DEFAULT '',
		market VARCHAR(300) NOT NULL,
		selection VARCHAR(300) NOT NULL,
		odds DECIMAL(10, 4) NOT NULL,
		bookmaker VARCHAR(100) NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(source, match_id, market, selection, bookmaker)
	);

	CREATE INDEX IF NOT EXISTS idx_offers_source ON offers(source);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// LoadOffers returns the rows of one source in insertion order.
func (s *PostgresOfferStorage) LoadOffers(ctx context.Context, source string) ([]OfferRecord, error) {
	query := `
	SELECT match_id, match_name, sport, competition, datetime, market, selection, odds, bookmaker
	FROM offers
	WHERE source = $1
	ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var out []OfferRecord
	for rows.Next() {
		var r OfferRecord
		if err := rows.Scan(&r.MatchID, &r.MatchName, &r.Sport, &r.Competition, &r.Datetime,
			&r.Market, &r.Selection, &r.Odds, &r.Bookmaker); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read offers: %w", err)
	}
	return out, nil
}

// StoreOffers upserts rows: one row per (source, match_id, market, selection, bookmaker).
func (s *PostgresOfferStorage) StoreOffers(ctx context.Context, source string, records []OfferRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO offers (
		source, match_id, match_name, sport, competition,
		datetime, market, selection, odds, bookmaker
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (source, match_id, market, selection, bookmaker) DO UPDATE SET
		match_name = EXCLUDED.match_name,
		sport = EXCLUDED.sport,
		competition = EXCLUDED.competition,
		datetime = EXCLUDED.datetime,
		odds = EXCLUDED.odds,
		updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, source, r.MatchID, r.MatchName, r.Sport, r.Competition,
			r.Datetime, r.Market, r.Selection, r.Odds, r.Bookmaker); err != nil {
			return fmt.Errorf("failed to upsert offer %s: %w", r.MatchID, err)
		}
	}
	return tx.Commit()
}

// DeleteStale removes rows of one source not updated since the given time.
func (s *PostgresOfferStorage) DeleteStale(ctx context.Context, source string, before time.Time) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM offers WHERE source = $1 AND updated_at < $2`, source, before)
	if err != nil {
		return fmt.Errorf("failed to clean offers: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		slog.Info("Cleaned stale offers", "source", source, "rows_deleted", rows)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresOfferStorage) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *PostgresOfferStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
