// Package metrics exposes Prometheus collectors for the scan service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "surebet"

// Collector holds the scan service metrics. Methods are safe on a nil Collector.
type Collector struct {
	cyclesTotal     *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	feedErrors      *prometheus.CounterVec
	feedOffers      *prometheus.GaugeVec
	skippedRows     *prometheus.CounterVec
	sharedEvents    prometheus.Gauge
	surebetsTotal   prometheus.Counter
	surebetProfit   prometheus.Histogram
	rejectionsTotal *prometheus.CounterVec
	alertsTotal     *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scan cycles by outcome",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a scan cycle",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		feedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Feed loads that failed",
		}, []string{"feed"}),
		feedOffers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_offers",
			Help:      "Offers in the last loaded snapshot of a feed",
		}, []string{"feed"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Input rows dropped during ingestion",
		}, []string{"feed"}),
		sharedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shared_events",
			Help:      "Events present in at least two feeds in the last cycle",
		}),
		surebetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surebets_detected_total",
			Help:      "Surebets emitted by the detector",
		}),
		surebetProfit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "surebet_profit_percent",
			Help:      "Tax-adjusted profit of detected surebets",
			Buckets:   []float64{-10, -5, -2, 0, 1, 2, 3, 5, 10, 20},
		}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Submarkets rejected by the detector",
		}, []string{"reason"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts by channel and result",
		}, []string{"channel", "result"}),
	}

	for _, col := range []prometheus.Collector{
		c.cyclesTotal, c.cycleDuration, c.feedErrors, c.feedOffers, c.skippedRows,
		c.sharedEvents, c.surebetsTotal, c.surebetProfit, c.rejectionsTotal, c.alertsTotal,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveCycle(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.cyclesTotal.WithLabelValues(outcome).Inc()
	c.cycleDuration.Observe(d.Seconds())
}

func (c *Collector) FeedError(feed string) {
	if c == nil {
		return
	}
	c.feedErrors.WithLabelValues(feed).Inc()
}

func (c *Collector) FeedLoaded(feed string, offers int) {
	if c == nil {
		return
	}
	c.feedOffers.WithLabelValues(feed).Set(float64(offers))
}

func (c *Collector) SkippedRows(feed string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.skippedRows.WithLabelValues(feed).Add(float64(n))
}

func (c *Collector) SharedEvents(n int) {
	if c == nil {
		return
	}
	c.sharedEvents.Set(float64(n))
}

func (c *Collector) Surebet(profit float64) {
	if c == nil {
		return
	}
	c.surebetsTotal.Inc()
	c.surebetProfit.Observe(profit)
}

func (c *Collector) Rejection(reason string) {
	if c == nil {
		return
	}
	c.rejectionsTotal.WithLabelValues(reason).Inc()
}

func (c *Collector) Alert(channel, result string) {
	if c == nil {
		return
	}
	c.alertsTotal.WithLabelValues(channel, result).Inc()
}
