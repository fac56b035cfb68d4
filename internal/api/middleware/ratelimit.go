package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/social-graph/pkg/response"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key (caller ID, else client IP).
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

func (l *RateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	// sweep on write, no background goroutine
	if len(l.visitors) > 1024 {
		for k, other := range l.visitors {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CallerID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !l.allow(key, time.Now()) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
