package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

var _ Source = (*BrowserSource)(nil)

// Page is one bookmaker page scraped with headless Chrome. Script must evaluate to an
// array of objects with the Row field names.
type Page struct {
	URL          string
	Script       string
	WaitSelector string
}

// BrowserOptions configures the Chrome session of a BrowserSource.
type BrowserOptions struct {
	Headless    bool
	Timeout     time.Duration
	RescanAfter time.Duration
}

// PageFetcher runs a page script and returns its rows.
type PageFetcher func(ctx context.Context, page Page, userAgent, proxy string, opts BrowserOptions) ([]Row, error)

// BrowserSource scrapes pages with chromedp. A page scanned less than RescanAfter ago
// is served from the cached rows.
type BrowserSource struct {
	name    string
	pages   []Page
	opts    BrowserOptions
	rotator *Rotator
	seen    storage.SeenStore
	fetch   PageFetcher

	mu    sync.Mutex
	cache map[string][]Row
}

func NewBrowserSource(name string, pages []Page, opts BrowserOptions, rotator *Rotator, seen storage.SeenStore) *BrowserSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if rotator == nil {
		rotator = NewRotator(nil, nil, time.Now().UnixNano())
	}
	if seen == nil {
		seen = storage.NewMemorySeenStore()
	}
	return &BrowserSource{
		name:    name,
		pages:   pages,
		opts:    opts,
		rotator: rotator,
		seen:    seen,
		fetch:   fetchWithChrome,
		cache:   make(map[string][]Row),
	}
}

// WithFetcher replaces the chromedp fetcher.
func (s *BrowserSource) WithFetcher(f PageFetcher) *BrowserSource {
	s.fetch = f
	return s
}

func (s *BrowserSource) Name() string { return s.name }

func (s *BrowserSource) Load(ctx context.Context) (models.Feed, error) {
	var rows []Row
	failed := 0

	for _, page := range s.pages {
		if err := ctx.Err(); err != nil {
			return models.Feed{}, err
		}
		pageRows, err := s.loadPage(ctx, page)
		if err != nil {
			failed++
			slog.Warn("Browser feed: page failed", "feed", s.name, "url", page.URL, "error", err)
			continue
		}
		rows = append(rows, pageRows...)
	}

	if len(s.pages) > 0 && failed == len(s.pages) {
		return models.Feed{}, fmt.Errorf("all %d pages of feed %s failed", failed, s.name)
	}

	feed, stats := BuildFeed(s.name, rows)
	slog.Debug("Browser feed loaded", "feed", s.name, "pages", len(s.pages), "failed", failed,
		"offers", stats.Offers, "events", len(feed.Events))
	return feed, nil
}

func (s *BrowserSource) loadPage(ctx context.Context, page Page) ([]Row, error) {
	key := s.name + "|" + page.URL

	s.mu.Lock()
	cached, hasCache := s.cache[page.URL]
	s.mu.Unlock()

	if hasCache && s.opts.RescanAfter > 0 {
		fresh, err := s.seen.MarkIfNew(ctx, key, s.opts.RescanAfter)
		if err != nil {
			slog.Warn("Browser feed: seen store failed, rescanning", "url", page.URL, "error", err)
		} else if !fresh {
			return cached, nil
		}
	}

	pageCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rows, err := s.fetch(pageCtx, page, s.rotator.UserAgent(), s.rotator.Proxy(), s.opts)
	if err != nil {
		if hasCache {
			slog.Warn("Browser feed: serving stale rows", "url", page.URL, "error", err)
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[page.URL] = rows
	s.mu.Unlock()

	if s.opts.RescanAfter > 0 {
		if _, err := s.seen.MarkIfNew(ctx, key, s.opts.RescanAfter); err != nil {
			slog.Warn("Browser feed: failed to record scan", "url", page.URL, "error", err)
		}
	}
	return rows, nil
}

func fetchWithChrome(ctx context.Context, page Page, userAgent, proxy string, opts BrowserOptions) ([]Row, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxy))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug(fmt.Sprintf("chromedp: "+format, v...))
	}))
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(page.URL)}
	if page.WaitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(page.WaitSelector, chromedp.ByQuery))
	}
	var raw []byte
	actions = append(actions, chromedp.Evaluate(page.Script, &raw))

	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, fmt.Errorf("chromedp %s: %w", page.URL, err)
	}
	return DecodeRows(raw)
}

type rawRow struct {
	MatchID     json.RawMessage `json:"match_id"`
	MatchName   string          `json:"match_name"`
	Sport       string          `json:"sport"`
	Competition string          `json:"competition"`
	Datetime    string          `json:"datetime"`
	Market      string          `json:"market"`
	Selection   string          `json:"selection"`
	Odds        json.RawMessage `json:"odds"`
	Bookmaker   string          `json:"bookmaker"`
}

// DecodeRows decodes a JSON array of rows. match_id and odds may be strings or numbers.
func DecodeRows(data []byte) ([]Row, error) {
	var raw []rawRow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, Row{
			MatchID:     scalarString(r.MatchID),
			MatchName:   r.MatchName,
			Sport:       r.Sport,
			Competition: r.Competition,
			Datetime:    r.Datetime,
			Market:      r.Market,
			Selection:   r.Selection,
			Odds:        scalarString(r.Odds),
			Bookmaker:   r.Bookmaker,
		})
	}
	return rows, nil
}

func scalarString(m json.RawMessage) string {
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(m))
}
