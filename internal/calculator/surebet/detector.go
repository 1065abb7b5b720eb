package surebet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// Options are the tunables of one detection pass.
type Options struct {
	TaxRate       float64 // share of every payout taken as tax, in [0, 1)
	MinimalProfit float64 // percent; results below are dropped

	// ForceShowAll disables the profit, same-source and side-count filters at once.
	ForceShowAll    bool
	AllowSameSource bool
	AllowNonBinary  bool
}

// DefaultOptions returns a 12% tax and a zero profit threshold.
func DefaultOptions() Options {
	return Options{TaxRate: DefaultTaxRate}
}

// Validate checks that the options describe a computable pass.
func (o Options) Validate() error {
	if o.TaxRate < 0 || o.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %v", o.TaxRate)
	}
	return nil
}

func (o Options) allowSameSource() bool { return o.ForceShowAll || o.AllowSameSource }
func (o Options) allowNonBinary() bool  { return o.ForceShowAll || o.AllowNonBinary }

// Rejection records a submarket that was filtered out.
type Rejection struct {
	MatchID   string       `json:"match_id"`
	Submarket string       `json:"submarket"`
	Reason    RejectReason `json:"reason"`
	Profit    float64      `json:"profit,omitempty"` // set for RejectLowProfit
}

// Report is the full outcome of a detection pass.
type Report struct {
	SharedEvents int
	Submarkets   int
	Surebets     []models.Surebet
	Rejections   []Rejection
}

// Detect returns the surebets found across feeds. See DetectWithReport.
func Detect(opts Options, feeds ...models.Feed) []models.Surebet {
	return DetectWithReport(opts, feeds...).Surebets
}

// DetectWithReport cross-references events present in at least two feeds, in ascending
// event id order, and evaluates every classified submarket. Metadata is taken from the
// first feed holding the event; offers are combined in feed order.
//
// It panics if opts is invalid.
func DetectWithReport(opts Options, feeds ...models.Feed) Report {
	if err := opts.Validate(); err != nil {
		panic("surebet: " + err.Error())
	}
	classifier := NewClassifier()
	var report Report

	for _, id := range sharedEventIDs(feeds) {
		var meta *models.Event
		var offers []models.Offer
		for _, f := range feeds {
			ev, ok := f.Events[id]
			if !ok {
				continue
			}
			if meta == nil {
				meta = ev
			}
			offers = append(offers, ev.Offers...)
		}
		report.SharedEvents++

		for _, sm := range Aggregate(classifier, offers) {
			report.Submarkets++
			sel, reason := SelectBest(sm, opts)
			if reason != RejectNone {
				report.Rejections = append(report.Rejections, Rejection{MatchID: id, Submarket: sm.Key, Reason: reason})
				continue
			}

			p1, p2 := sel.Legs[0].Quote.Price, sel.Legs[1].Quote.Price
			profit := ProfitPercent(p1, p2, opts.TaxRate)
			if profit < opts.MinimalProfit && !opts.ForceShowAll {
				report.Rejections = append(report.Rejections, Rejection{MatchID: id, Submarket: sm.Key, Reason: RejectLowProfit, Profit: profit})
				continue
			}
			report.Surebets = append(report.Surebets, buildSurebet(meta, sel, profit, opts.TaxRate))
		}
	}
	return report
}

// sharedEventIDs returns, sorted, the ids of events present in at least two feeds.
func sharedEventIDs(feeds []models.Feed) []string {
	seen := map[string]int{}
	for _, f := range feeds {
		for id := range f.Events {
			if id == "" {
				continue
			}
			seen[id]++
		}
	}
	ids := make([]string, 0, len(seen))
	for id, n := range seen {
		if n >= 2 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func buildSurebet(ev *models.Event, sel Selection, profit, taxRate float64) models.Surebet {
	p1, p2 := sel.Legs[0].Quote.Price, sel.Legs[1].Quote.Price
	s1, s2 := Stakes(p1, p2, taxRate, stakeBank)
	stakes := [2]float64{s1, s2}

	sb := models.Surebet{
		MatchID:    ev.ID,
		MatchName:  ev.Name,
		Datetime:   strings.Replace(ev.Datetime, "T", " ", 1),
		StartTime:  ev.StartTime,
		Sport:      ev.Sport,
		League:     ev.Competition,
		Submarket:  sel.Submarket,
		Profit:     profit,
		SameSource: sel.SameSource,
	}
	for i, leg := range sel.Legs {
		sb.Bets[i] = models.Bet{
			Bookmaker: leg.Quote.Source,
			Selection: leg.Side,
			Odds:      leg.Quote.Price,
			Stake:     round2(stakes[i]),
			Return:    round2(stakes[i] * effective(leg.Quote.Price, taxRate)),
		}
	}
	return sb
}
