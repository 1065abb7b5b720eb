package models

import (
	"time"
)

// Offer is one quoted price for one outcome from one bookmaker.
// Price is a finite decimal price above 1.0; feeds drop rows that break this before
// building offers, and the engine relies on it.
type Offer struct {
	Source    string  `json:"source"`    // bookmaker identifier
	Market    string  `json:"market"`    // free-text market name
	Selection string  `json:"selection"` // free-text outcome name
	Price     float64 `json:"price"`     // decimal odds, > 1.0
}

// Event is one real-world fixture as seen by a single feed.
// ID is the only join key between feeds.
type Event struct {
	ID          string    `json:"match_id"`
	Name        string    `json:"match_name"`
	Datetime    string    `json:"datetime"` // raw ISO-8601 text from the feed
	StartTime   time.Time `json:"start_time"`
	Sport       string    `json:"sport"`
	Competition string    `json:"competition"`
	Offers      []Offer   `json:"offers"`
}

// Feed is the normalized per-event record set delivered by one feed producer.
type Feed struct {
	Source  string
	Events  map[string]*Event
	Skipped int // input rows dropped while building the feed
}

// NewFeed creates an empty feed for the given source.
func NewFeed(source string) Feed {
	return Feed{Source: source, Events: map[string]*Event{}}
}

// OfferCount returns the total number of offers across all events.
func (f Feed) OfferCount() int {
	n := 0
	for _, ev := range f.Events {
		n += len(ev.Offers)
	}
	return n
}
