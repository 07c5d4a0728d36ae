package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(webhook *handlers.WebhookHandler, forecasts *handlers.ForecastHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/webhook", webhook.Verify)
	r.POST("/webhook", webhook.Receive)
	r.POST("/send-message", webhook.SendMessage)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/forecast", forecasts.Forecast)
		api.POST("/forecast/evaluate", forecasts.Evaluate)
		api.GET("/forecast/history", forecasts.History)
		api.GET("/forecast/export", forecasts.Export)
		api.GET("/inventory/low-stock", forecasts.LowStock)
		api.POST("/orders/draft", forecasts.DraftOrder)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
