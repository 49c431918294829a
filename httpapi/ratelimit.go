package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	pruneInterval = time.Minute
	entryMaxIdle  = 3 * time.Minute
)

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiter keeps a token bucket per client IP. Stale entries are pruned
// inline on the next allow call rather than by a background goroutine, so a
// limiter needs no teardown.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limiterEntry
	r         rate.Limit
	burst     int
	lastPrune time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		clients:   make(map[string]*limiterEntry),
		r:         rate.Limit(rps),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastPrune) > pruneInterval {
		for k, e := range l.clients {
			if now.Sub(e.seen) > entryMaxIdle {
				delete(l.clients, k)
			}
		}
		l.lastPrune = now
	}

	e, ok := l.clients[ip]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.r, l.burst)}
		l.clients[ip] = e
	}
	e.seen = now
	l.mu.Unlock()

	return e.lim.Allow()
}
