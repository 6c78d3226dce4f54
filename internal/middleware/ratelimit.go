package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter hands out one token bucket per client IP.
type ClientLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > limiterIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func RateLimitMiddleware(limiter *ClientLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			log.Warn("too many requests", zap.String("client_ip", c.ClientIP()), zap.String("path", c.FullPath()))
			httperr.Write(c, http.StatusTooManyRequests, "too_many_requests", "Too many requests, slow down.")
			c.Abort()
			return
		}
		c.Next()
	}
}
