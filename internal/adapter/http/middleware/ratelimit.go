package middleware

import (
	"math"
	"strconv"
	"time"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule caps one route group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the limits keyed by route group. Credential
// endpoints are tight; the admin console gets headroom for queue triage.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"auth_login":    {Limit: 10, Window: time.Minute},
		"auth_register": {Limit: 5, Window: time.Hour},
		"lookup":        {Limit: 30, Window: time.Minute},
		"client":        {Limit: 60, Window: time.Minute},
		"requests":      {Limit: 20, Window: time.Minute},
		"admin":         {Limit: 120, Window: time.Minute},
	}
}

// RateLimiter enforces rule for group. When the limiter itself fails the
// request is let through and the failure logged.
func RateLimiter(limiter ports.RateLimiter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), group+":"+clientKey(c), rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limiter unavailable, request allowed")
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if decision.Allowed {
			c.Next()
			return
		}

		wait := math.Ceil(time.Until(decision.ResetAt).Seconds())
		h.Set("Retry-After", strconv.Itoa(max(int(wait), 1)))
		response.Error(c, apperror.ErrRateLimitExceeded())
		c.Abort()
	}
}

// clientKey identifies authenticated callers by user id and everyone else
// by client IP.
func clientKey(c *gin.Context) string {
	if caller, ok := CallerFrom(c); ok {
		return "user:" + caller.UserID.String()
	}
	return "ip:" + c.ClientIP()
}
