package surebet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

func TestMarketLabel(t *testing.T) {
	assert.Equal(t, "Over/Under 2.5", MarketLabel("over_under:2.5"))
	assert.Equal(t, "Handicap -1.5", MarketLabel("handicap:-1.5"))
	assert.Equal(t, "btts", MarketLabel("btts"))
}

func TestFormatMessage(t *testing.T) {
	sb := models.Surebet{
		MatchID:   "E1",
		MatchName: "Legia <Warszawa> vs Lech",
		Datetime:  "2026-06-01 18:00:00",
		Sport:     "football",
		League:    "Ekstraklasa",
		Submarket: "over_under:2.5",
		Profit:    3.35,
		Bets: [2]models.Bet{
			{Bookmaker: "sts", Selection: "over", Odds: 2.3, Stake: 51.06},
			{Bookmaker: "fortuna", Selection: "under", Odds: 2.4, Stake: 48.94},
		},
	}

	msg := FormatMessage(sb, "[PREMIUM]", 0.12)
	lines := strings.Split(msg, "\n")

	assert.Equal(t, "[PREMIUM] 🟢 SUREBET DETECTED", lines[0])
	assert.Contains(t, msg, "Profit after tax (12%): <b>+3.35%</b>")
	assert.Contains(t, msg, "Legia &lt;Warszawa&gt; vs Lech | Ekstraklasa")
	assert.Contains(t, msg, "Market: <tg-spoiler>Over/Under 2.5</tg-spoiler>")
	assert.Contains(t, msg, "🏦 sts: OVER @ 2.3 (stake 51.06)")
	assert.Contains(t, msg, "🏦 fortuna: UNDER @ 2.4 (stake 48.94)")
	assert.False(t, strings.HasSuffix(msg, "\n"))
}

func TestFormatMessage_SameBook(t *testing.T) {
	sb := models.Surebet{
		Submarket: "btts",
		Profit:    -1.5,
		Bets:      [2]models.Bet{{Bookmaker: "sts", Selection: "tak"}, {Bookmaker: "sts", Selection: "nie"}},
	}

	msg := FormatMessage(sb, "", 0.12)

	assert.True(t, strings.HasPrefix(msg, "⚠️ SAME-BOOK PAIR"))
	assert.Contains(t, msg, "<b>-1.50%</b>")
}
