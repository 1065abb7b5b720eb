package calculator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Vodeneev/surebetbot/internal/calculator/surebet"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// RunOnce executes one full cycle: load feeds, detect, route, dedup and notify.
// Failed feeds are logged and left out. Only context cancellation is returned as an error.
func (s *Service) RunOnce(ctx context.Context) (CycleResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	cfg := s.store.Snapshot()
	res := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := slog.With("cycle_id", res.ID)

	feeds, statuses := s.loadFeeds(ctx, cfg.Scanner.FeedTimeout)
	res.Feeds = statuses

	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeCanceled
		s.finish(log, &res)
		return res, err
	}

	if len(feeds) < 2 {
		log.Warn("Scanner: not enough feeds for detection", "loaded", len(feeds), "configured", len(s.sources))
		res.Outcome = OutcomeNotEnough
		s.finish(log, &res)
		return res, nil
	}

	report := surebet.DetectWithReport(engineOptions(cfg.Engine), feeds...)
	res.SharedEvents = report.SharedEvents
	res.Submarkets = report.Submarkets
	res.Surebets = report.Surebets
	if len(report.Rejections) > 0 {
		res.Rejections = make(map[string]int)
	}
	for _, rej := range report.Rejections {
		res.Rejections[string(rej.Reason)]++
		s.metrics.Rejection(string(rej.Reason))
	}
	s.metrics.SharedEvents(report.SharedEvents)
	for _, sb := range report.Surebets {
		s.metrics.Surebet(sb.Profit)
	}

	res.Alerts = s.dispatch(ctx, cfg, report.Surebets)
	res.Outcome = OutcomeOK
	s.finish(log, &res)
	return res, nil
}

func (s *Service) finish(log *slog.Logger, res *CycleResult) {
	res.Duration = time.Since(res.StartedAt)
	s.metrics.ObserveCycle(res.Outcome, res.Duration)
	s.setLast(*res)

	log.Info("Scanner: cycle finished",
		"outcome", res.Outcome,
		"duration", res.Duration.Round(time.Millisecond),
		"feeds", len(res.Feeds),
		"shared_events", res.SharedEvents,
		"submarkets", res.Submarkets,
		"surebets", len(res.Surebets),
		"alerts", len(res.Alerts))
}

// loadFeeds loads every source concurrently. The returned feeds keep source order.
func (s *Service) loadFeeds(ctx context.Context, timeout time.Duration) ([]models.Feed, []FeedStatus) {
	loaded := make([]*models.Feed, len(s.sources))
	statuses := make([]FeedStatus, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			loadCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				loadCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			started := time.Now()
			f, err := src.Load(loadCtx)
			statuses[i].Name = src.Name()
			if err != nil {
				statuses[i].Error = err.Error()
				s.metrics.FeedError(src.Name())
				slog.Warn("Scanner: feed failed", "feed", src.Name(), "error", err)
				return nil
			}

			f.Source = src.Name()
			statuses[i].Events = len(f.Events)
			statuses[i].Offers = f.OfferCount()
			statuses[i].Skipped = f.Skipped
			s.metrics.FeedLoaded(src.Name(), statuses[i].Offers)
			s.metrics.SkippedRows(src.Name(), f.Skipped)
			slog.Debug("Scanner: feed loaded", "feed", src.Name(),
				"events", statuses[i].Events, "offers", statuses[i].Offers, "duration", time.Since(started))
			loaded[i] = &f
			return nil
		})
	}
	_ = g.Wait()

	feeds := make([]models.Feed, 0, len(loaded))
	for _, f := range loaded {
		if f != nil {
			feeds = append(feeds, *f)
		}
	}
	return feeds, statuses
}

// dispatch routes surebets to channels. A key already sent within scanner.dedup_ttl is skipped;
// a zero ttl disables dedup. A key whose alert could not be queued is unmarked so the next
// cycle retries it.
func (s *Service) dispatch(ctx context.Context, cfg *config.Config, surebets []models.Surebet) []Alert {
	router := NewRouter(cfg.Routing)
	var alerts []Alert

	for _, sb := range surebets {
		ch := router.Route(sb.Profit)
		if ch == ChannelNone {
			continue
		}
		alert := Alert{Key: sb.Key(), Channel: ch, Profit: sb.Profit}

		marked := false
		if s.seen != nil && cfg.Scanner.DedupTTL > 0 {
			fresh, err := s.seen.MarkIfNew(ctx, alert.Key, cfg.Scanner.DedupTTL)
			marked = err == nil && fresh
			if err != nil {
				slog.Warn("Scanner: dedup store failed, sending anyway", "key", alert.Key, "error", err)
			} else if !fresh {
				alert.Result = AlertDuplicate
				alerts = append(alerts, alert)
				s.metrics.Alert(string(ch), alert.Result)
				continue
			}
		}

		chatID := ChatID(cfg.Telegram, ch)
		switch {
		case s.notifier == nil || chatID == 0:
			alert.Result = AlertNoSink
			slog.Info("Scanner: surebet routed without sink", "key", alert.Key, "channel", ch, "profit", sb.Profit)
		default:
			text := surebet.FormatMessage(sb, ch.Tag(), cfg.Engine.TaxRate)
			if err := s.notifier.Notify(ctx, chatID, text); err != nil {
				alert.Result = AlertFailed
				slog.Error("Scanner: failed to queue alert", "key", alert.Key, "channel", ch, "error", err)
				if marked {
					if err := s.seen.Forget(ctx, alert.Key); err != nil {
						slog.Warn("Scanner: failed to unmark alert", "key", alert.Key, "error", err)
					}
				}
			} else {
				alert.Result = AlertQueued
				slog.Info("Scanner: alert queued", "key", alert.Key, "channel", ch, "profit", sb.Profit)
			}
		}
		s.metrics.Alert(string(ch), alert.Result)
		alerts = append(alerts, alert)
	}
	return alerts
}

func engineOptions(cfg config.EngineConfig) surebet.Options {
	return surebet.Options{
		TaxRate:         cfg.TaxRate,
		MinimalProfit:   cfg.MinimalProfit,
		ForceShowAll:    cfg.ForceShowAll,
		AllowSameSource: cfg.AllowSameSource,
		AllowNonBinary:  cfg.AllowNonBinary,
	}
}
