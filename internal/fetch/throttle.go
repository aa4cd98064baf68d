package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces a minimum spacing between successive requests to one
// registrable domain. One token-bucket limiter per domain, burst 1, so a
// caller whose request would violate the spacing blocks until it elapses.
type Throttle struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	every    time.Duration
}

// NewThrottle creates a Throttle with the given minimum inter-request
// delay per domain.
func NewThrottle(minDelay time.Duration) *Throttle {
	if minDelay <= 0 {
		minDelay = 5 * time.Second
	}
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		every:    minDelay,
	}
}

// Wait blocks until a request to the URL's registrable domain may
// proceed, or until the context is cancelled.
func (t *Throttle) Wait(ctx context.Context, rawURL string) error {
	domain := RegistrableDomain(rawURL)
	if domain == "" {
		return nil
	}
	return t.limiter(domain).Wait(ctx)
}

func (t *Throttle) limiter(domain string) *rate.Limiter {
	t.mu.RLock()
	lim, ok := t.limiters[domain]
	t.mu.RUnlock()
	if ok {
		return lim
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if lim, ok := t.limiters[domain]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Every(t.every), 1)
	t.limiters[domain] = lim
	return lim
}
