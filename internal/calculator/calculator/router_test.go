package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/surebetbot/internal/pkg/config"
)

func TestRouter_Route(t *testing.T) {
	r := Router{Floor: 0, FreeMax: 2, PremiumMin: 4, GapPolicy: config.GapDrop}

	tests := []struct {
		profit float64
		want   Channel
	}{
		{-3, ChannelNone},
		{0, ChannelNone},
		{0.01, ChannelFree},
		{2, ChannelFree},
		{2.01, ChannelNone},
		{3.99, ChannelNone},
		{4, ChannelPremium},
		{25, ChannelPremium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Route(tt.profit), "profit %v", tt.profit)
	}

	r.GapPolicy = config.GapFree
	assert.Equal(t, ChannelFree, r.Route(3))
	r.GapPolicy = config.GapPremium
	assert.Equal(t, ChannelPremium, r.Route(3))
	assert.Equal(t, ChannelNone, r.Route(0), "floor wins over gap policy")
}

func TestRouter_Validate(t *testing.T) {
	r := Router{FreeMax: 2, PremiumMin: 4, GapPolicy: config.GapDrop}
	err := r.Validate()
	var gap *GapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, 2.0, gap.Low)
	assert.Equal(t, 4.0, gap.High)

	r.GapPolicy = config.GapPremium
	assert.NoError(t, r.Validate())

	assert.NoError(t, Router{FreeMax: 3, PremiumMin: 3}.Validate())
	assert.Error(t, Router{FreeMax: 5, PremiumMin: 3}.Validate())
	assert.Error(t, Router{FreeMax: 1, PremiumMin: 3, GapPolicy: "both"}.Validate())
}

func TestChannel(t *testing.T) {
	cfg := config.TelegramConfig{FreeChatID: -1, PremiumChatID: -2}
	assert.Equal(t, int64(-1), ChatID(cfg, ChannelFree))
	assert.Equal(t, int64(-2), ChatID(cfg, ChannelPremium))
	assert.Equal(t, int64(0), ChatID(cfg, ChannelNone))
	assert.Equal(t, "[PREMIUM]", ChannelPremium.Tag())
	assert.Equal(t, "", ChannelNone.Tag())
}
