package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
)

// Deps are the shared resources sources may need. Offers is required only for
// postgres feeds; Seen backs the browser rescan window.
type Deps struct {
	Offers storage.OfferStorage
	Seen   storage.SeenStore
}

// NewSources builds one Source per configured feed, in config order.
func NewSources(feeds []config.FeedConfig, browser config.BrowserConfig, deps Deps) ([]Source, error) {
	var rotator *Rotator
	sources := make([]Source, 0, len(feeds))

	for _, fc := range feeds {
		switch strings.ToLower(fc.Type) {
		case config.FeedCSV:
			sources = append(sources, NewCSVSource(fc.Name, fc.Path))
		case config.FeedPostgres:
			if deps.Offers == nil {
				return nil, fmt.Errorf("feed %s: postgres storage is not configured", fc.Name)
			}
			sources = append(sources, NewPostgresSource(fc.Name, fc.Source, deps.Offers))
		case config.FeedBrowser:
			if rotator == nil {
				rotator = NewRotator(browser.UserAgents, browser.Proxies, time.Now().UnixNano())
			}
			pages := make([]Page, 0, len(fc.Pages))
			for _, p := range fc.Pages {
				pages = append(pages, Page{URL: p.URL, Script: p.Script, WaitSelector: p.WaitSelector})
			}
			opts := BrowserOptions{
				Headless:    browser.Headless,
				Timeout:     browser.Timeout,
				RescanAfter: fc.RescanAfter,
			}
			sources = append(sources, NewBrowserSource(fc.Name, pages, opts, rotator, deps.Seen))
		default:
			return nil, fmt.Errorf("feed %s: unknown type %q", fc.Name, fc.Type)
		}
	}
	return sources, nil
}
