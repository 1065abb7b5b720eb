package surebet

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// MarketLabel returns a human readable name for a submarket key.
func MarketLabel(submarket string) string {
	switch {
	case strings.HasPrefix(submarket, overUnderPrefix):
		return "Over/Under " + strings.TrimPrefix(submarket, overUnderPrefix)
	case strings.HasPrefix(submarket, handicapPrefix):
		return "Handicap " + strings.TrimPrefix(submarket, handicapPrefix)
	default:
		return submarket
	}
}

// FormatMessage renders a surebet as a Telegram HTML message. tag is prepended when not empty.
func FormatMessage(sb models.Surebet, tag string, taxRate float64) string {
	var b strings.Builder
	if tag != "" {
		b.WriteString(html.EscapeString(tag))
		b.WriteString(" ")
	}
	if sb.Bets[0].Bookmaker == sb.Bets[1].Bookmaker {
		b.WriteString("⚠️ SAME-BOOK PAIR\n")
	} else {
		b.WriteString("🟢 SUREBET DETECTED\n")
	}
	fmt.Fprintf(&b, "Profit after tax (%s%%): <b>%+.2f%%</b>\n\n", strconv.FormatFloat(round2(taxRate*100), 'f', -1, 64), sb.Profit)

	match := sb.MatchName
	if sb.League != "" {
		match += " | " + sb.League
	}
	fmt.Fprintf(&b, "Match: <tg-spoiler>%s</tg-spoiler>\n", html.EscapeString(match))
	fmt.Fprintf(&b, "Date: %s\n", html.EscapeString(sb.Datetime))
	fmt.Fprintf(&b, "Sport: %s\n", html.EscapeString(sb.Sport))
	fmt.Fprintf(&b, "Market: <tg-spoiler>%s</tg-spoiler>\n\n", html.EscapeString(MarketLabel(sb.Submarket)))

	b.WriteString("Bets:\n")
	for _, bet := range sb.Bets {
		fmt.Fprintf(&b, "<tg-spoiler>🏦 %s: %s @ %s (stake %.2f)</tg-spoiler>\n",
			html.EscapeString(bet.Bookmaker),
			html.EscapeString(strings.ToUpper(bet.Selection)),
			strconv.FormatFloat(bet.Odds, 'f', -1, 64),
			bet.Stake)
	}
	return strings.TrimRight(b.String(), "\n")
}
