package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/utils"
)

const (
	defaultSweepInterval = time.Minute
	defaultIdleTTL       = 15 * time.Minute
)

// RateLimitConfig configures a per-client-IP token bucket.
type RateLimitConfig struct {
	Burst             int              // bucket capacity
	RefillPerIPPerMin int              // tokens added per minute
	MaxEntries        int              // sweep idle buckets early once this many exist (0 = no cap)
	SweepInterval     time.Duration    // how often idle buckets are dropped (default 1m)
	IdleTTL           time.Duration    // bucket idle time before it is dropped (default 15m)
	TrustProxy        bool             // resolve the client IP from proxy headers
	Now               func() time.Time // clock, defaults to time.Now
}

func (c RateLimitConfig) normalized() RateLimitConfig {
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = defaultIdleTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type bucket struct {
	tokens float64
	filled time.Time // last refill
}

// decision is the outcome of one take.
type decision struct {
	allowed    bool
	remaining  int
	retryAfter int // seconds, only set when !allowed
}

type limiter struct {
	cfg       RateLimitConfig
	perSecond float64

	mu        sync.Mutex
	buckets   map[string]bucket
	nextSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg = cfg.normalized()
	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60,
		buckets:   make(map[string]bucket),
		nextSweep: cfg.Now().Add(cfg.SweepInterval),
	}
}

// take refills key's bucket up to now and spends one token if it can.
func (l *limiter) take(key string, now time.Time) decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if full || !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	capacity := float64(l.cfg.Burst)
	b, ok := l.buckets[key]
	if !ok {
		b = bucket{tokens: capacity, filled: now}
	}
	if dt := now.Sub(b.filled).Seconds(); dt > 0 {
		b.tokens = math.Min(capacity, b.tokens+dt*l.perSecond)
		b.filled = now
	}

	var d decision
	if b.tokens >= 1 {
		b.tokens--
		d = decision{allowed: true, remaining: int(b.tokens)}
	} else {
		d.retryAfter = max(int(math.Ceil((1-b.tokens)/l.perSecond)), 1)
	}
	l.buckets[key] = b
	return d
}

// sweep drops buckets that have been idle for longer than IdleTTL.
// A bucket that refilled to capacity carries no state worth keeping.
func (l *limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.filled) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.nextSweep = now.Add(l.cfg.SweepInterval)
}

// RateLimit rejects requests with 429 once the client's bucket is empty.
// All routes wrapped by the returned middleware share the same buckets.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.take(utils.ClientIP(r, l.cfg.TrustProxy), l.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			if !d.allowed {
				h.Set("Retry-After", strconv.Itoa(d.retryAfter))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
