// Package feed turns bookmaker data into normalized per-event offer sets.
package feed

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/surebetbot/internal/calculator/surebet"
	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// Source produces one feed snapshot per call.
type Source interface {
	Name() string
	Load(ctx context.Context) (models.Feed, error)
}

// Row is one offer row as produced by a scraper or API poller.
type Row struct {
	MatchID     string `json:"match_id"`
	MatchName   string `json:"match_name"`
	Sport       string `json:"sport"`
	Competition string `json:"competition"`
	Datetime    string `json:"datetime"`
	Market      string `json:"market"`
	Selection   string `json:"selection"`
	Odds        string `json:"odds"`
	Bookmaker   string `json:"bookmaker"`
}

// IngestStats counts rows accepted and skipped while building a feed.
type IngestStats struct {
	Rows         int
	Offers       int
	EmptyMatchID int
	BadOdds      int
}

// Skipped returns the number of dropped rows.
func (s IngestStats) Skipped() int {
	return s.EmptyMatchID + s.BadOdds
}

// BuildFeed groups rows by match id. Rows without a match id or with odds that do not
// parse to a price above 1.0 are skipped. Event metadata comes from the first row of a match.
func BuildFeed(name string, rows []Row) (models.Feed, IngestStats) {
	f := models.NewFeed(name)
	stats := IngestStats{Rows: len(rows)}

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

		ev, ok := f.Events[id]
		if !ok {
			ev = &models.Event{
				ID:          id,
				Name:        cleanText(r.MatchName),
				Datetime:    strings.TrimSpace(r.Datetime),
				StartTime:   parseStartTime(r.Datetime),
				Sport:       cleanText(r.Sport),
				Competition: cleanText(r.Competition),
			}
			f.Events[id] = ev
		}

		bookmaker := cleanText(r.Bookmaker)
		if bookmaker == "" {
			bookmaker = name
		}
		ev.Offers = append(ev.Offers, models.Offer{
			Source:    bookmaker,
			Market:    cleanKey(r.Market),
			Selection: cleanKey(r.Selection),
			Price:     price,
		})
		stats.Offers++
	}

	f.Skipped = stats.Skipped()
	if f.Skipped > 0 {
		slog.Debug("Feed: skipped malformed rows", "feed", name,
			"empty_match_id", stats.EmptyMatchID, "bad_odds", stats.BadOdds)
	}
	return f, stats
}

// ParseOdds parses decimal odds written with a dot or a comma.
func ParseOdds(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !surebet.IsValidPrice(v) {
		return 0, false
	}
	return v, true
}

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseStartTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
