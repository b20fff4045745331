package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/webbridge/internal/shared/types"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL evicts limiters of clients not seen for this long.
	IdleTTL time.Duration
	// Skip exempts requests, for example WebSocket upgrades that are paced
	// per message instead.
	Skip func(c *gin.Context) bool
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterTable keeps one token bucket per key.
type limiterTable struct {
	mu      sync.Mutex
	clients map[string]*client
	cfg     RateLimitConfig
	swept   time.Time
}

func newLimiterTable(cfg RateLimitConfig) *limiterTable {
	return &limiterTable{clients: make(map[string]*client), cfg: cfg, swept: time.Now()}
}

func (t *limiterTable) allow(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cfg.IdleTTL > 0 && now.Sub(t.swept) > t.cfg.IdleTTL {
		for k, c := range t.clients {
			if now.Sub(c.lastSeen) > t.cfg.IdleTTL {
				delete(t.clients, k)
			}
		}
		t.swept = now
	}

	c, exists := t.clients[key]
	if !exists {
		c = &client{limiter: rate.NewLimiter(rate.Limit(t.cfg.RequestsPerSecond), t.cfg.Burst)}
		t.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (t *limiterTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	table := newLimiterTable(cfg)

	return func(c *gin.Context) {
		if cfg.Skip != nil && cfg.Skip(c) {
			c.Next()
			return
		}
		if !table.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Error: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// IsWebSocket reports whether the request asks for a WebSocket upgrade.
func IsWebSocket(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
