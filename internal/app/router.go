package app

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/splitcpg/splitcpg-backend/internal/observability"
	"github.com/splitcpg/splitcpg-backend/internal/platform/envutil"
)

func wireRouter(handlerset Handlers, mw Middleware) *gin.Engine {
	if envutil.String("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mw.CORS)
	router.Use(mw.RequestLog)
	router.Use(mw.Metrics)
	if envutil.Bool("OTEL_ENABLED", false) {
		router.Use(otelgin.Middleware("splitcpg-backend"))
	}

	router.GET("/health", handlerset.Health.Check)
	if observability.Enabled() {
		router.GET("/metrics", func(c *gin.Context) {
			if m := observability.Current(); m != nil {
				m.WriteHTTP(c.Writer, c.Request)
			}
		})
	}

	api := router.Group("/api")

	// public marketplace reads and the processor webhook
	api.GET("/splits", handlerset.Split.List)
	api.GET("/splits/:id", handlerset.Split.Get)
	api.GET("/companies", handlerset.Company.List)
	api.GET("/companies/:id", handlerset.Company.Get)
	api.GET("/events", handlerset.Event.List)
	api.GET("/events/:id", handlerset.Event.Get)
	api.POST("/payments/webhook", handlerset.Payment.Webhook)

	authed := api.Group("", mw.Auth)
	authed.POST("/splits", handlerset.Split.Create)
	authed.POST("/splits/:id/join", handlerset.Split.Join)
	authed.POST("/splits/:id/leave", handlerset.Split.Leave)
	authed.POST("/splits/:id/cancel", handlerset.Split.Cancel)
	authed.DELETE("/splits/:id", handlerset.Split.Delete)

	authed.POST("/payments/checkout", handlerset.Payment.Checkout)
	authed.POST("/payments/confirm", handlerset.Payment.Confirm)
	authed.GET("/payments/history", handlerset.Payment.History)
	authed.POST("/payments/connect", handlerset.Payment.ConnectAccount)
	authed.GET("/payments/connect/status", handlerset.Payment.ConnectStatus)
	authed.GET("/payments/connect/onboarding-link", handlerset.Payment.OnboardingLink)
	authed.GET("/payments/connect/dashboard-link", handlerset.Payment.DashboardLink)

	authed.POST("/companies", handlerset.Company.Create)
	authed.PUT("/companies/:id", handlerset.Company.Update)
	authed.POST("/events", handlerset.Event.Create)

	return router
}
