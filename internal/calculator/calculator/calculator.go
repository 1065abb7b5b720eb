package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Vodeneev/surebetbot/internal/feed"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/metrics"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

// Notifier delivers a rendered alert to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Service periodically loads all feeds, detects surebets and routes new ones to the notifier.
type Service struct {
	store    *config.Store
	sources  []feed.Source
	seen     storage.SeenStore
	notifier Notifier
	metrics  *metrics.Collector

	asyncMu      sync.RWMutex
	asyncTicker  *time.Ticker
	asyncStopped bool
	asyncCtx     context.Context
	asyncCancel  context.CancelFunc
	baseCtx      context.Context
	interval     time.Duration

	runMu    sync.Mutex
	resultMu sync.RWMutex
	last     *CycleResult
}

// Option configures a Service.
type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithSeenStore(st storage.SeenStore) Option {
	return func(s *Service) { s.seen = st }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store *config.Store, sources []feed.Source, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sources:  sources,
		seen:     storage.NewMemorySeenStore(),
		baseCtx:  context.Background(),
		interval: store.Snapshot().Scanner.Interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs until ctx is cancelled. The scan loop starts right away when scanner.autostart is set.
func (s *Service) Start(ctx context.Context) error {
	s.asyncMu.Lock()
	s.baseCtx = ctx
	s.asyncMu.Unlock()

	if s.store.Snapshot().Scanner.Autostart {
		if err := s.StartAsync(); err != nil {
			return err
		}
	} else {
		slog.Info("Scanner: autostart disabled, waiting for /start")
	}

	<-ctx.Done()

	s.StopAsync()
	return nil
}

// StartAsync starts the scan loop. It is a no-op when the loop is already running.
func (s *Service) StartAsync() error {
	s.asyncMu.Lock()
	defer s.asyncMu.Unlock()

	if s.asyncTicker != nil && !s.asyncStopped {
		slog.Info("Scanner: already running")
		return nil
	}
	if err := s.baseCtx.Err(); err != nil {
		return fmt.Errorf("scanner is shutting down: %w", err)
	}
	if s.interval <= 0 {
		return errors.New("scanner interval must be positive")
	}

	if s.asyncCancel != nil {
		s.asyncCancel()
	}
	s.asyncCtx, s.asyncCancel = context.WithCancel(s.baseCtx)

	s.asyncStopped = false
	if s.asyncTicker != nil {
		s.asyncTicker.Stop()
	}
	s.asyncTicker = time.NewTicker(s.interval)

	slog.Info("Scanner: starting", "interval", s.interval)
	go s.runAsync(s.asyncCtx, s.asyncTicker)

	return nil
}

func (s *Service) runAsync(ctx context.Context, ticker *time.Ticker) {
	// Run immediately on start
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scanner: loop stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Scanner: cycle failed", "error", err)
	}
}

// StopAsync stops the scan loop. A running cycle is cancelled.
func (s *Service) StopAsync() {
	s.asyncMu.Lock()
	defer s.asyncMu.Unlock()

	if !s.asyncStopped && s.asyncTicker != nil {
		s.asyncStopped = true
		s.asyncTicker.Stop()
		if s.asyncCancel != nil {
			s.asyncCancel()
		}
		slog.Info("Scanner: stopped")
	}
}

// IsAsyncRunning returns true if the scan loop is currently running
func (s *Service) IsAsyncRunning() bool {
	s.asyncMu.RLock()
	defer s.asyncMu.RUnlock()
	return s.asyncTicker != nil && !s.asyncStopped
}

// SetInterval changes the period between cycles, taking effect on the running loop.
func (s *Service) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %v", d)
	}
	s.asyncMu.Lock()
	defer s.asyncMu.Unlock()

	s.interval = d
	if s.asyncTicker != nil && !s.asyncStopped {
		s.asyncTicker.Reset(d)
	}
	slog.Info("Scanner: interval changed", "interval", d)
	return nil
}

func (s *Service) Interval() time.Duration {
	s.asyncMu.RLock()
	defer s.asyncMu.RUnlock()
	return s.interval
}

// LastResult returns the most recent completed cycle.
func (s *Service) LastResult() (CycleResult, bool) {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()
	if s.last == nil {
		return CycleResult{}, false
	}
	return *s.last, true
}

func (s *Service) setLast(r CycleResult) {
	s.resultMu.Lock()
	s.last = &r
	s.resultMu.Unlock()
}
