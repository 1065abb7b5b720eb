package feed

import (
	"math/rand"
	"sync"
)

// DefaultUserAgents is used when no user agents are configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
}

// Rotator picks a random user agent and proxy for each browser session.
type Rotator struct {
	mu         sync.Mutex
	rnd        *rand.Rand
	userAgents []string
	proxies    []string
}

func NewRotator(userAgents, proxies []string, seed int64) *Rotator {
	if len(userAgents) == 0 {
		userAgents = DefaultUserAgents
	}
	return &Rotator{
		rnd:        rand.New(rand.NewSource(seed)),
		userAgents: userAgents,
		proxies:    proxies,
	}
}

func (r *Rotator) UserAgent() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userAgents[r.rnd.Intn(len(r.userAgents))]
}

// Proxy returns an empty string when no proxies are configured.
func (r *Rotator) Proxy() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.proxies) == 0 {
		return ""
	}
	return r.proxies[r.rnd.Intn(len(r.proxies))]
}
