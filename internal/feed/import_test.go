package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

func TestImport_StoresValidRowsAndCleansStale(t *testing.T) {
	rows, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	st := &fakeOfferStorage{records: map[string][]storage.OfferRecord{}}
	cutoff := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	stats, err := Import(context.Background(), st, "sts_scraper", rows, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Offers)
	assert.Equal(t, []time.Time{cutoff}, st.deleteCalls)

	got := st.records["sts_scraper"]
	require.Len(t, got, 3)
	assert.Equal(t, "E1", got[0].MatchID)
	assert.Equal(t, "Over/Under (2.5)", got[0].Market)
	assert.InDelta(t, 2.10, got[0].Odds, 1e-9)

	// The imported table reads back as the same feed.
	f, err := NewPostgresSource("sts", "sts_scraper", st).Load(context.Background())
	require.NoError(t, err)
	direct, _ := BuildFeed("sts", rows)
	assert.Equal(t, direct.Events, f.Events)
}

func TestImport_KeepStaleAndErrors(t *testing.T) {
	rows := []Row{
		{MatchID: "E1", Market: "btts", Selection: "tak", Odds: "2.6"},
		{MatchID: "", Market: "btts", Selection: "nie", Odds: "2.4"},
		{MatchID: "E1", Market: "btts", Selection: "nie", Odds: "abc"},
	}
	st := &fakeOfferStorage{records: map[string][]storage.OfferRecord{}}

	stats, err := Import(context.Background(), st, "s", rows, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Offers)
	assert.Equal(t, 1, stats.EmptyMatchID)
	assert.Equal(t, 1, stats.BadOdds)
	assert.Empty(t, st.deleteCalls)

	failing := &fakeOfferStorage{records: map[string][]storage.OfferRecord{}, err: errors.New("down")}
	_, err = Import(context.Background(), failing, "s", rows, time.Now())
	assert.ErrorContains(t, err, "failed to import s")
	assert.Empty(t, failing.deleteCalls, "no cleanup after a failed store")
}
