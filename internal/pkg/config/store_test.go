package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdatePersistsWithoutEnvSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	path := writeConfig(t, sampleYAML)

	s, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", s.Snapshot().Telegram.BotToken)

	require.NoError(t, s.Update(func(c *Config) { c.Routing.FreeMax = 1.5 }))
	assert.Equal(t, 1.5, s.Snapshot().Routing.FreeMax)
	assert.Equal(t, "env-token", s.Snapshot().Telegram.BotToken)

	saved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, saved.Routing.FreeMax)
	assert.Empty(t, saved.Telegram.BotToken, "env secret not written back")
}

func TestStore_RejectsInvalidUpdate(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	s, err := NewStore(path)
	require.NoError(t, err)

	err = s.Update(func(c *Config) { c.Routing.PremiumMin = 1 })
	require.Error(t, err)
	assert.Equal(t, 4.0, s.Snapshot().Routing.PremiumMin)

	saved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, saved.Routing.PremiumMin)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	cfg := Default()
	s := NewStoreFrom("", &cfg)

	snap := s.Snapshot()
	snap.Engine.TaxRate = 0.5
	assert.Equal(t, 0.12, s.Snapshot().Engine.TaxRate)

	require.NoError(t, s.Update(func(c *Config) { c.Engine.MinimalProfit = 1 }))
	assert.Equal(t, 1.0, s.Snapshot().Engine.MinimalProfit)
}
