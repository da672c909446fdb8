package delivery

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

const actorContextKey = "actor"

// IdentityMiddleware resolves the calling actor from the trusted identity
// headers set by the session layer in front of this service. Requests
// without a usable X-User-ID stay anonymous; the guard decides per
// operation whether that is acceptable.
func IdentityMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			c.Next()
			return
		}
		userID, err := strconv.Atoi(userIDStr)
		if err != nil || userID <= 0 {
			log.Warnf("Ignoring invalid X-User-ID header value: %s", userIDStr)
			c.Next()
			return
		}
		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = domain.RoleClient
		}
		c.Set(actorContextKey, &domain.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// CurrentActor returns the resolved actor or nil for anonymous requests.
func CurrentActor(c *gin.Context) *domain.Actor {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil
	}
	actor, ok := v.(*domain.Actor)
	if !ok {
		return nil
	}
	return actor
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
		})
		switch {
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
