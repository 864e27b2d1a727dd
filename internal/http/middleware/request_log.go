package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

// RequestLog assigns a request id and logs one line per request on the way
// out.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLog")
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		reqLog.Info("request",
			"requestId", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds(),
		)
	}
}
