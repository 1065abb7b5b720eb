package surebet

// RejectReason explains why a submarket produced no candidate pair.
type RejectReason string

const (
	RejectNone       RejectReason = ""
	RejectSideCount  RejectReason = "side_count"
	RejectSameSource RejectReason = "same_source"
	RejectLowProfit  RejectReason = "low_profit"
)

// Leg is the best quote for one side.
type Leg struct {
	Side  string
	Quote Quote
}

// Selection is the best-priced pair of a submarket.
type Selection struct {
	Submarket  string
	Legs       [2]Leg
	SideCount  int
	SameSource bool
}

// SelectBest picks the highest price per side for a two-sided submarket.
// Submarkets without exactly two sides are rejected unless AllowNonBinary is set, in
// which case the first two sides are used; fewer than two sides is always rejected.
// A pair whose best prices come from one bookmaker is rejected unless AllowSameSource is set.
func SelectBest(sm Submarket, opts Options) (Selection, RejectReason) {
	sel := Selection{Submarket: sm.Key, SideCount: len(sm.Sides)}
	if len(sm.Sides) < 2 {
		return sel, RejectSideCount
	}
	if len(sm.Sides) != 2 && !opts.allowNonBinary() {
		return sel, RejectSideCount
	}

	for i := 0; i < 2; i++ {
		q, ok := bestQuote(sm.Sides[i].Quotes)
		if !ok {
			return sel, RejectSideCount
		}
		sel.Legs[i] = Leg{Side: sm.Sides[i].Side, Quote: q}
	}

	sel.SameSource = sel.Legs[0].Quote.Source == sel.Legs[1].Quote.Source
	if sel.SameSource && !opts.allowSameSource() {
		return sel, RejectSameSource
	}
	return sel, RejectNone
}

// bestQuote returns the first quote holding the maximum price.
func bestQuote(quotes []Quote) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.Price > best.Price {
			best = q
		}
	}
	return best, true
}
