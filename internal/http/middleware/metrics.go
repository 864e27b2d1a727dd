package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/observability"
)

// APIMetrics records request counts, latency and in-flight gauge.
func APIMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := observability.Current()
		if m == nil {
			c.Next()
			return
		}
		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
