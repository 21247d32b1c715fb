package middleware

import (
	"net/http"
	"sync"
	"time"

	jsonres "agrikoSearch/pkg/response"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-IP token bucket. The limiter map is bounded:
// when it grows past maxEntries, the stalest entry is evicted so the map
// cannot grow without bound under address churn.
func RateLimiter(rps rate.Limit, burst, maxEntries int) echo.MiddlewareFunc {
	var mu sync.Mutex
	limiters := make(map[string]*ipLimiter)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		entry, ok := limiters[ip]
		if !ok {
			entry = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
			limiters[ip] = entry

			if len(limiters) > maxEntries {
				// evict the stalest entry, never the one just created
				var oldestIP string
				var oldest time.Time
				for k, v := range limiters {
					if k == ip {
						continue
					}
					if oldestIP == "" || v.lastSeen.Before(oldest) {
						oldestIP = k
						oldest = v.lastSeen
					}
				}
				if oldestIP != "" {
					delete(limiters, oldestIP)
				}
			}
		}
		entry.lastSeen = time.Now()

		return entry.limiter
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !get(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, jsonres.Error(
					"RATE_LIMITED", "Too many requests", nil,
				))
			}
			return next(c)
		}
	}
}
