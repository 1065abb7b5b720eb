package calculator

import (
	"fmt"

	"github.com/Vodeneev/surebetbot/internal/pkg/config"
)

// Channel is an alert destination.
type Channel string

const (
	ChannelNone    Channel = ""
	ChannelFree    Channel = "free"
	ChannelPremium Channel = "premium"
)

// Tag returns the message prefix for the channel.
func (c Channel) Tag() string {
	switch c {
	case ChannelFree:
		return "[FREE]"
	case ChannelPremium:
		return "[PREMIUM]"
	default:
		return ""
	}
}

// Router maps a tax-adjusted profit to a channel.
type Router struct {
	Floor      float64
	FreeMax    float64
	PremiumMin float64
	GapPolicy  string
}

func NewRouter(cfg config.RoutingConfig) Router {
	return Router{
		Floor:      cfg.Floor,
		FreeMax:    cfg.FreeMax,
		PremiumMin: cfg.PremiumMin,
		GapPolicy:  cfg.GapPolicy,
	}
}

// Route applies the thresholds in order: floor, free, premium, then the gap policy.
func (r Router) Route(profit float64) Channel {
	switch {
	case profit <= r.Floor:
		return ChannelNone
	case profit <= r.FreeMax:
		return ChannelFree
	case profit >= r.PremiumMin:
		return ChannelPremium
	}
	switch r.GapPolicy {
	case config.GapFree:
		return ChannelFree
	case config.GapPremium:
		return ChannelPremium
	default:
		return ChannelNone
	}
}

// Gap returns the open interval (FreeMax, PremiumMin) and whether it is non-empty.
func (r Router) Gap() (float64, float64, bool) {
	return r.FreeMax, r.PremiumMin, r.PremiumMin > r.FreeMax
}

func (r Router) Validate() error {
	if r.PremiumMin < r.FreeMax {
		return fmt.Errorf("premium_min %.2f is below free_max %.2f", r.PremiumMin, r.FreeMax)
	}
	switch r.GapPolicy {
	case "", config.GapDrop, config.GapFree, config.GapPremium:
	default:
		return fmt.Errorf("unknown gap policy %q", r.GapPolicy)
	}
	if lo, hi, ok := r.Gap(); ok && (r.GapPolicy == "" || r.GapPolicy == config.GapDrop) {
		return &GapError{Low: lo, High: hi}
	}
	return nil
}

// GapError reports profits that no channel receives.
type GapError struct {
	Low, High float64
}

func (e *GapError) Error() string {
	return fmt.Sprintf("profits in (%.2f, %.2f) are not routed to any channel", e.Low, e.High)
}

// ChatID returns the configured chat for a channel, 0 when none.
func ChatID(cfg config.TelegramConfig, ch Channel) int64 {
	switch ch {
	case ChannelFree:
		return cfg.FreeChatID
	case ChannelPremium:
		return cfg.PremiumChatID
	default:
		return 0
	}
}
