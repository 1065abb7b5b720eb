package models

import "time"

// Surebet is a detected cross-book arbitrage on one two-outcome submarket.
type Surebet struct {
	MatchID    string    `json:"match_id"`
	MatchName  string    `json:"match_name"`
	Datetime   string    `json:"datetime"`
	StartTime  time.Time `json:"start_time,omitempty"`
	Sport      string    `json:"sport"`
	League     string    `json:"league"`
	Submarket  string    `json:"submarket"`
	Profit     float64   `json:"profit"` // percent after tax, 2 decimals
	Bets       [2]Bet    `json:"bets"`
	SameSource bool      `json:"same_source,omitempty"`
}

// Bet is one leg of a surebet.
type Bet struct {
	Bookmaker string  `json:"bookmaker"`
	Selection string  `json:"selection"`
	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`  // share of a 100 unit bank
	Return    float64 `json:"return"` // payout if this leg wins, after tax
}

// Key identifies a surebet across detection runs.
func (s Surebet) Key() string {
	return s.MatchID + "|" + s.Submarket
}
