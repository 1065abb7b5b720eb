package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

// Records converts rows into offer table records. Rows without a match id or with an
// unusable price are dropped and counted the same way BuildFeed counts them.
func Records(rows []Row) ([]storage.OfferRecord, IngestStats) {
	stats := IngestStats{Rows: len(rows)}
	out := make([]storage.OfferRecord, 0, len(rows))

	for _, r := range rows {
		id := strings.TrimSpace(r.MatchID)
		if id == "" {
			stats.EmptyMatchID++
			continue
		}
		price, ok := ParseOdds(r.Odds)
		if !ok {
			stats.BadOdds++
			continue
		}
		out = append(out, storage.OfferRecord{
			MatchID:     id,
			MatchName:   cleanText(r.MatchName),
			Sport:       cleanText(r.Sport),
			Competition: cleanText(r.Competition),
			Datetime:    strings.TrimSpace(r.Datetime),
			Market:      cleanText(r.Market),
			Selection:   cleanText(r.Selection),
			Odds:        price,
			Bookmaker:   cleanText(r.Bookmaker),
		})
		stats.Offers++
	}
	return out, stats
}

// Import upserts the valid rows for source. When staleBefore is set, rows of source not
// touched since then are deleted afterwards, so the table mirrors the imported snapshot.
func Import(ctx context.Context, st storage.OfferStorage, source string, rows []Row, staleBefore time.Time) (IngestStats, error) {
	records, stats := Records(rows)
	if err := st.StoreOffers(ctx, source, records); err != nil {
		return stats, fmt.Errorf("failed to import %s: %w", source, err)
	}
	if !staleBefore.IsZero() {
		if err := st.DeleteStale(ctx, source, staleBefore); err != nil {
			return stats, fmt.Errorf("failed to clean %s: %w", source, err)
		}
	}

	slog.Info("Feed import finished", "source", source, "rows", stats.Rows,
		"stored", stats.Offers, "skipped", stats.Skipped())
	return stats, nil
}
