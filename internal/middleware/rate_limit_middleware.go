// internal/middleware/rate_limit_middleware.go
package middleware

import (
	"strconv"

	"bakery-popup/internal/pkg/ratelimit"
	"bakery-popup/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit counts requests per client IP, or per operator once Auth has run.
// When Redis is unreachable the request goes through.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, ok := GetOperatorID(c); ok {
			key = "operator:" + id
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			response.TooManyRequests(c, "too many requests, try again shortly")
			return
		}

		c.Next()
	}
}
