package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSeenStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewRedisSeenStore(addr, os.Getenv("REDIS_PASSWORD"), 0, "surebet-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	ok, err := s.MarkIfNew(ctx, "E1|btts", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkIfNew(ctx, "E1|btts", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Forget(ctx, "E1|btts"))
	ok, err = s.MarkIfNew(ctx, "E1|btts", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresOfferStorage(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	s, err := NewPostgresOfferStorage(dsn)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	source := "test-" + uuid.NewString()
	records := []OfferRecord{
		{MatchID: "E1", MatchName: "A vs B", Market: "btts", Selection: "tak", Odds: 2.6, Bookmaker: "sts"},
		{MatchID: "E1", MatchName: "A vs B", Market: "btts", Selection: "nie", Odds: 2.4, Bookmaker: "sts"},
	}
	require.NoError(t, s.StoreOffers(ctx, source, records))

	records[0].Odds = 2.7
	require.NoError(t, s.StoreOffers(ctx, source, records[:1]))

	got, err := s.LoadOffers(ctx, source)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tak", got[0].Selection)
	assert.InDelta(t, 2.7, got[0].Odds, 1e-9)

	require.NoError(t, s.DeleteStale(ctx, source, time.Now().Add(time.Hour)))
	got, err = s.LoadOffers(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, got)
}
