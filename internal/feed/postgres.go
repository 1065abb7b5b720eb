package feed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

var _ Source = (*PostgresSource)(nil)

// PostgresSource reads one source's rows from the offers table.
type PostgresSource struct {
	name    string
	source  string
	storage storage.OfferStorage
}

// NewPostgresSource uses source as the table filter; an empty source falls back to name.
func NewPostgresSource(name, source string, st storage.OfferStorage) *PostgresSource {
	if source == "" {
		source = name
	}
	return &PostgresSource{name: name, source: source, storage: st}
}

func (s *PostgresSource) Name() string { return s.name }

func (s *PostgresSource) Load(ctx context.Context) (models.Feed, error) {
	records, err := s.storage.LoadOffers(ctx, s.source)
	if err != nil {
		return models.Feed{}, fmt.Errorf("failed to load feed %s: %w", s.name, err)
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			MatchID:     r.MatchID,
			MatchName:   r.MatchName,
			Sport:       r.Sport,
			Competition: r.Competition,
			Datetime:    r.Datetime,
			Market:      r.Market,
			Selection:   r.Selection,
			Odds:        strconv.FormatFloat(r.Odds, 'f', -1, 64),
			Bookmaker:   r.Bookmaker,
		})
	}
	feed, _ := BuildFeed(s.name, rows)
	return feed, nil
}
