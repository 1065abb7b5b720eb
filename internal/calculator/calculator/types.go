package calculator

import (
	"time"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// Cycle outcomes, also used as metric labels.
const (
	OutcomeOK        = "ok"
	OutcomeNotEnough = "not_enough_feeds"
	OutcomeCanceled  = "canceled"
)

// FeedStatus describes one source load within a cycle.
type FeedStatus struct {
	Name    string `json:"name"`
	Events  int    `json:"events"`
	Offers  int    `json:"offers"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Alert is one routed surebet of a cycle.
type Alert struct {
	Key     string  `json:"key"`
	Channel Channel `json:"channel"`
	Profit  float64 `json:"profit"`
	Result  string  `json:"result"` // queued, duplicate, no_sink or failed
}

// Alert results.
const (
	AlertQueued    = "queued"
	AlertDuplicate = "duplicate"
	AlertNoSink    = "no_sink"
	AlertFailed    = "failed"
)

// CycleResult summarizes one scan cycle.
type CycleResult struct {
	ID           string           `json:"id"`
	StartedAt    time.Time        `json:"started_at"`
	Duration     time.Duration    `json:"duration"`
	Outcome      string           `json:"outcome"`
	Feeds        []FeedStatus     `json:"feeds"`
	SharedEvents int              `json:"shared_events"`
	Submarkets   int              `json:"submarkets"`
	Rejections   map[string]int   `json:"rejections,omitempty"`
	Surebets     []models.Surebet `json:"surebets,omitempty"`
	Alerts       []Alert          `json:"alerts,omitempty"`
}
