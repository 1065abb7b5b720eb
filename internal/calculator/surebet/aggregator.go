package surebet

import (
	"math"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// Quote is one (bookmaker, price) pair for a side.
type Quote struct {
	Source string
	Price  float64
}

// SideQuotes holds every quote seen for one side of a submarket.
type SideQuotes struct {
	Side   string
	Quotes []Quote
}

// Submarket groups the quotes of one event by canonical submarket.
// Sides appear in first-seen order.
type Submarket struct {
	Key   string
	Sides []SideQuotes
}

// Aggregate classifies offers and groups them by submarket and side.
// Submarkets keep the order in which their key first appeared; quotes are never deduplicated.
// Every classified offer is kept; prices are expected to satisfy IsValidPrice already.
func Aggregate(c *Classifier, offers []models.Offer) []Submarket {
	var out []Submarket
	subIdx := map[string]int{}
	sideIdx := map[string]map[string]int{}

	for _, o := range offers {
		cl, ok := c.Classify(o.Market, o.Selection)
		if !ok {
			continue
		}
		si, ok := subIdx[cl.Submarket]
		if !ok {
			si = len(out)
			subIdx[cl.Submarket] = si
			sideIdx[cl.Submarket] = map[string]int{}
			out = append(out, Submarket{Key: cl.Submarket})
		}
		sub := &out[si]
		di, ok := sideIdx[cl.Submarket][cl.Side]
		if !ok {
			di = len(sub.Sides)
			sideIdx[cl.Submarket][cl.Side] = di
			sub.Sides = append(sub.Sides, SideQuotes{Side: cl.Side})
		}
		sub.Sides[di].Quotes = append(sub.Sides[di].Quotes, Quote{Source: o.Source, Price: o.Price})
	}
	return out
}

// QuoteCount returns the number of quotes across all sides.
func (s Submarket) QuoteCount() int {
	n := 0
	for _, sq := range s.Sides {
		n += len(sq.Quotes)
	}
	return n
}

// IsValidPrice reports whether v is a usable decimal price.
func IsValidPrice(v float64) bool {
	return v > 1.0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
