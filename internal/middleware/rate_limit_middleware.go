// internal/middleware/rate_limit_middleware.go
package middleware

import (
	"net/http"

	xerrors "friendchat-service/internal/pkg/errors"
	"friendchat-service/internal/pkg/response"
	"friendchat-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitLogin throttles beta token redemption attempts by client IP. A
// limiter failure (redis down) lets the request through: losing the throttle
// is better than losing the login surface.
func RateLimitLogin(limiter *session.RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.CheckLoginAttempt(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			logger.Warn("login rate limit exceeded",
				zap.String("ip", c.ClientIP()),
			)
			response.Error(c, http.StatusTooManyRequests, xerrors.UserMessage(xerrors.ErrRateLimited), nil)
			return
		}

		c.Set("login_attempts_remaining", remaining)
		c.Next()
	}
}
