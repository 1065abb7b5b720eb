// Package surebet finds two-outcome arbitrage between bookmakers.
//
// Raw market/selection text is classified into canonical submarkets, offers from all
// feeds are grouped per event and submarket, the best price per side is selected and
// the tax-adjusted guaranteed profit is computed. The package performs no I/O and keeps
// no state between calls.
package surebet

import (
	"regexp"
	"strings"
)

const (
	SideOver  = "over"
	SideUnder = "under"

	handicapPrefix  = "handicap:"
	overUnderPrefix = "over_under:"
)

var (
	handicapLineRe  = regexp.MustCompile(`\(([+-]?\d+(\.\d+)?)\)`)
	overUnderLineRe = regexp.MustCompile(`(\d+(\.\d+)?)`)

	handicapMarketTokens = []string{"handicap"}

	// EN and PL market tokens for over/under pairings.
	overUnderMarketTokens = []string{"over", "under", "powyżej", "poniżej"}

	overSelectionTokens  = []string{"over", "powyżej"}
	underSelectionTokens = []string{"under", "poniżej"}

	binaryVocabulary = map[string]struct{}{
		"yes": {}, "no": {},
		"tak": {}, "nie": {},
		"1": {}, "2": {},
	}
)

// Classification is the canonical (submarket, side) of one offer.
type Classification struct {
	Submarket string
	Side      string
}

// Rule is one classification rule. Trigger decides whether the rule owns the
// offer; once it fires, Extract's result is final even when it fails.
type Rule struct {
	Name    string
	Trigger func(market, selection string) bool
	Extract func(market, selection string) (Classification, bool)
}

// Classifier maps raw market text to canonical submarkets by evaluating rules in order.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. Without rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// DefaultRules returns handicap, over/under and binary-vocabulary rules in that order.
func DefaultRules() []Rule {
	return []Rule{HandicapRule(), OverUnderRule(), BinaryRule()}
}

// Classify returns the canonical submarket and side for a raw offer.
// Unsupported markets are reported with ok == false.
func (c *Classifier) Classify(market, selection string) (Classification, bool) {
	mkt := normalize(market)
	sel := normalize(selection)
	for _, r := range c.rules {
		if r.Trigger(mkt, sel) {
			return r.Extract(mkt, sel)
		}
	}
	return Classification{}, false
}

// HandicapRule matches "handicap" markets with a "(+1.5)" style line in the selection.
// The side is the leading token of the selection, usually the team slot.
func HandicapRule() Rule {
	return Rule{
		Name: "handicap",
		Trigger: func(market, _ string) bool {
			return containsAny(market, handicapMarketTokens)
		},
		Extract: func(_, selection string) (Classification, bool) {
			m := handicapLineRe.FindStringSubmatch(selection)
			if m == nil {
				return Classification{}, false
			}
			fields := strings.Fields(selection)
			return Classification{Submarket: handicapPrefix + m[1], Side: fields[0]}, true
		},
	}
}

// OverUnderRule matches total markets. The selection must start with an over/under
// token and contain the line.
func OverUnderRule() Rule {
	return Rule{
		Name: "over_under",
		Trigger: func(market, _ string) bool {
			return containsAny(market, overUnderMarketTokens)
		},
		Extract: func(_, selection string) (Classification, bool) {
			var side string
			switch {
			case hasAnyPrefix(selection, overSelectionTokens):
				side = SideOver
			case hasAnyPrefix(selection, underSelectionTokens):
				side = SideUnder
			default:
				return Classification{}, false
			}
			m := overUnderLineRe.FindStringSubmatch(selection)
			if m == nil {
				return Classification{}, false
			}
			return Classification{Submarket: overUnderPrefix + m[1], Side: side}, true
		},
	}
}

// BinaryRule treats markets with a yes/no or 1/2 selection as already canonical.
func BinaryRule() Rule {
	return Rule{
		Name: "binary",
		Trigger: func(_, selection string) bool {
			_, ok := binaryVocabulary[selection]
			return ok
		},
		Extract: func(market, selection string) (Classification, bool) {
			return Classification{Submarket: market, Side: selection}, true
		},
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(s, t) {
			return true
		}
	}
	return false
}
