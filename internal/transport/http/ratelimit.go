package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/birthdaywall/internal/metrics"
)

// ErrCodeRateLimited is returned when a client posts too quickly.
const ErrCodeRateLimited = "rate_limited"

// limiterPool hands out one token bucket per client key.
// A bucket idle for longer than it takes to refill is indistinguishable from a
// new one, so such buckets are dropped on a periodic sweep.
type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*poolEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type poolEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(perMinute, burst int) *limiterPool {
	if burst <= 0 {
		burst = 1
	}
	refill := time.Duration(float64(burst) / float64(perMinute) * float64(time.Minute))
	if refill < time.Minute {
		refill = time.Minute
	}
	return &limiterPool{
		m:     make(map[string]*poolEntry),
		limit: rate.Limit(float64(perMinute) / 60),
		burst: burst,
		idle:  refill,
		now:   time.Now,
	}
}

func (p *limiterPool) allow(key string) bool {
	now := p.now()

	p.mu.Lock()
	if now.Sub(p.lastSweep) >= p.idle {
		p.sweep(now)
	}
	e, ok := p.m[key]
	if !ok {
		e = &poolEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.m[key] = e
	}
	e.lastSeen = now
	p.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Callers hold p.mu.
func (p *limiterPool) sweep(now time.Time) {
	for key, e := range p.m {
		if now.Sub(e.lastSeen) >= p.idle {
			delete(p.m, key)
		}
	}
	p.lastSweep = now
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// RateLimitMiddleware caps guest writes per client IP. perMinute <= 0 disables it.
// The client IP is the direct peer unless the router trusts a proxy in front of it.
// Admin login is not limited here; the shared password stays a plaintext check.
func RateLimitMiddleware(perMinute, burst int, m *metrics.Metrics, logger *zerolog.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	pool := newLimiterPool(perMinute, burst)

	return func(c *gin.Context) {
		if !pool.allow(c.ClientIP()) {
			logger.Debug().Str("client", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("rate limited")
			m.RateLimited.Inc()
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "slow down, please try again shortly", Code: ErrCodeRateLimited})
			c.Abort()
			return
		}
		c.Next()
	}
}
