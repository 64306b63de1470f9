package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/logger"
	"github.com/open-builders/todo-backend/internal/common/ratelimit"
)

// RateLimit limits requests per authenticated user. It must run after
// RequireSession. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.Next()
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), scope+":"+strconv.FormatInt(userID, 10))
		if err != nil {
			logger.Warn().Err(err).Str("scope", scope).Msg("Rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			seconds := int(decision.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			AbortWithError(c, errors.NewRateLimitError(scope, decision.RetryAfter))
			return
		}
		c.Next()
	}
}
