package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor pairs a client's token bucket with the time it last served a
// request, so stale entries can be evicted without touching active ones.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket keyed by IP address.
type RateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	rps        rate.Limit
	burst      int
	staleAfter time.Duration
	now        func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		rps:        rate.Limit(rps),
		burst:      burst,
		staleAfter: 10 * time.Minute,
		now:        time.Now,
	}

	go rl.sweep()

	return rl
}

// Allow reports whether a request from the client may proceed, refreshing
// the client's last-seen time.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[client] = v
	}
	v.lastSeen = rl.now()

	return v.limiter.Allow()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.staleAfter)
	defer ticker.Stop()
	for range ticker.C {
		rl.evictStale()
	}
}

// evictStale drops clients idle longer than staleAfter. An active client
// keeps its bucket state across sweeps, so it cannot reset a spent budget
// by waiting for one.
func (rl *RateLimiter) evictStale() {
	cutoff := rl.now().Add(-rl.staleAfter)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, client)
		}
	}
}

// RateLimitMiddleware creates a middleware for rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(getIPAddress(r)) {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
