package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

var _ Source = (*CSVSource)(nil)

// columnAliases maps accepted header names to Row fields.
var columnAliases = map[string]string{
	"match_id":    "match_id",
	"match_name":  "match_name",
	"sport":       "sport",
	"competition": "competition",
	"league":      "competition",
	"datetime":    "datetime",
	"market":      "market",
	"market_name": "market",
	"selection":   "selection",
	"outcome":     "selection",
	"odds":        "odds",
	"bookmaker":   "bookmaker",
}

var requiredColumns = []string{"match_id", "market", "selection", "odds"}

// CSVSource reads a feed from a CSV file with a header row.
type CSVSource struct {
	name string
	path string
}

func NewCSVSource(name, path string) *CSVSource {
	return &CSVSource{name: name, path: path}
}

func (s *CSVSource) Name() string { return s.name }

func (s *CSVSource) Load(ctx context.Context) (models.Feed, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return models.Feed{}, fmt.Errorf("failed to open feed %s: %w", s.name, err)
	}
	defer f.Close()

	rows, err := ReadCSV(ctx, f)
	if err != nil {
		return models.Feed{}, fmt.Errorf("failed to read feed %s: %w", s.name, err)
	}

	feed, stats := BuildFeed(s.name, rows)
	slog.Debug("CSV feed loaded", "feed", s.name, "path", s.path,
		"rows", stats.Rows, "offers", stats.Offers, "events", len(feed.Events))
	return feed, nil
}

// ReadCSV parses CSV rows. Unknown columns are ignored; rows with a wrong field count are skipped.
func ReadCSV(ctx context.Context, r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int)
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if field, ok := columnAliases[col]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Debug("CSV: skipping unreadable line", "line", line, "error", err)
			continue
		}
		if len(rec) != len(header) {
			slog.Debug("CSV: skipping line with wrong field count", "line", line, "fields", len(rec))
			continue
		}

		get := func(field string) string {
			if i, ok := index[field]; ok {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		rows = append(rows, Row{
			MatchID:     get("match_id"),
			MatchName:   get("match_name"),
			Sport:       get("sport"),
			Competition: get("competition"),
			Datetime:    get("datetime"),
			Market:      get("market"),
			Selection:   get("selection"),
			Odds:        get("odds"),
			Bookmaker:   get("bookmaker"),
		})
	}
	return rows, nil
}
