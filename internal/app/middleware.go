package app

import (
	"github.com/gin-gonic/gin"

	"github.com/splitcpg/splitcpg-backend/internal/http/middleware"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

type Middleware struct {
	Auth       gin.HandlerFunc
	CORS       gin.HandlerFunc
	RequestLog gin.HandlerFunc
	Metrics    gin.HandlerFunc
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{
		Auth:       middleware.RequireAuth(serviceset.Auth, log),
		CORS:       middleware.CORS(),
		RequestLog: middleware.RequestLog(log),
		Metrics:    middleware.APIMetrics(),
	}
}
