package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"task-service/internal/auth"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Default limits. The global tier covers the whole API; the strict tier sits
// on credential endpoints where brute forcing is the threat.
const (
	globalRatePerSecond = 100
	globalBurst         = 200
	strictRatePerSecond = 5
	strictBurst         = 10
)

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user id so a NAT'd office does not share one bucket; everything
// else falls back to the client IP.
type RateLimiter struct {
	buckets sync.Map // key -> *rate.Limiter
	rate    rate.Limit
	burst   int
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// NewGlobalRateLimiter returns the lenient API-wide limiter.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(globalRatePerSecond, globalBurst)
}

// NewStrictRateLimiter returns the tight limiter for auth endpoints.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(strictRatePerSecond, strictBurst)
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if existing, ok := rl.buckets.Load(key); ok {
		return existing.(*rate.Limiter)
	}
	// LoadOrStore so two concurrent first requests agree on one bucket.
	created, _ := rl.buckets.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return created.(*rate.Limiter)
}

// Allow consumes one token for the key, reporting whether it was available.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

func (rl *RateLimiter) keyFor(c echo.Context) string {
	if auth.GetAuthType(c) == auth.AuthTypeJWT {
		if userID, err := auth.GetUserID(c); err == nil {
			return "user:" + userID.String()
		}
	}
	return "ip:" + c.RealIP()
}

// Middleware enforces the limit and exposes the usual X-RateLimit headers.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bucket := rl.bucket(rl.keyFor(c))
			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))

			if !bucket.Allow() {
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			header.Set("X-RateLimit-Remaining", strconv.Itoa(int(bucket.Tokens())))
			return next(c)
		}
	}
}
