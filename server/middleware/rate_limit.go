// Package middleware provides HTTP middleware shared by the API routers.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// IngestRateLimiter throttles message ingestion per client IP. Parsing is
// cheap but the model fallback is not, so limits apply before the handler.
type IngestRateLimiter struct {
	mu       sync.Mutex
	limits   map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	lifetime time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIngestRateLimiter creates a limiter allowing rps requests per second
// with the given burst, per client key. Idle entries are dropped after an
// hour to keep the map bounded.
func NewIngestRateLimiter(rps float64, burst int) *IngestRateLimiter {
	return &IngestRateLimiter{
		limits:   make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		lifetime: time.Hour,
	}
}

// Allow reports whether the client identified by key may proceed now.
func (rl *IngestRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.evictIdle(now)

	entry, ok := rl.limits[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limits[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (rl *IngestRateLimiter) evictIdle(now time.Time) {
	for key, entry := range rl.limits {
		if now.Sub(entry.lastSeen) > rl.lifetime {
			delete(rl.limits, key)
		}
	}
}

// Middleware returns an echo middleware enforcing the limit per real IP.
func (rl *IngestRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
