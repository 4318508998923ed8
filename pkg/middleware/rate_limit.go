package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/liamneesonsarm/pickemup/pkg/metrics"
)

// limiterStore holds one token-bucket limiter per client key. Each
// configured middleware owns its own store so two limiters with different
// rps/burst never share buckets.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{limiters: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

// get returns (and lazily creates) the limiter for the given key
func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lim, ok := s.limiters[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	s.limiters[key] = lim
	return lim
}

// limitKey prefers the authenticated user id when present, otherwise the
// client IP. Per-user keying keeps users behind a shared NAT independent.
func limitKey(c *gin.Context) string {
	if id := UserID(c); id != "" {
		return "sub:" + id
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		lim := store.get(limitKey(c))
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
