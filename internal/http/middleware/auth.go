package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/http/response"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/ctxutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

// RequireAuth verifies the bearer token and installs the request identity on
// the request context for handlers downstream.
func RequireAuth(auth services.AuthService, log *logger.Logger) gin.HandlerFunc {
	authLog := log.With("middleware", "RequireAuth")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		rd, err := auth.ParseToken(token)
		if err != nil {
			authLog.Debug("token rejected", "error", err)
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
