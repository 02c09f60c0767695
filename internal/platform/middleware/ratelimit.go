package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-client request allowance.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns the allowance used when none is
// configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// clientLimiter pairs a limiter with its last use so idle clients can be
// evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const clientIdleTTL = time.Hour

// RateLimit enforces a token-bucket allowance per client IP. Limiters for
// clients idle longer than clientIdleTTL are dropped on the next sweep,
// so the map does not grow without bound.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
		sweepAt = time.Now().Add(clientIdleTTL)
	)

	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / cfg.RequestsPerSecond)))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()

			mu.Lock()
			if now.After(sweepAt) {
				for ip, cl := range clients {
					if now.Sub(cl.lastSeen) > clientIdleTTL {
						delete(clients, ip)
					}
				}
				sweepAt = now.Add(clientIdleTTL)
			}
			ip := c.RealIP()
			cl, ok := clients[ip]
			if !ok {
				cl = &clientLimiter{
					limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
				}
				clients[ip] = cl
			}
			cl.lastSeen = now
			allowed := cl.limiter.Allow()
			mu.Unlock()

			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !allowed {
				c.Response().Header().Set("Retry-After", retryAfter)
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
