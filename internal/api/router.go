package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("[API] Request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}

// SetupRouter wires the journal API onto a gin engine.
func SetupRouter(h *Handler, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware(corsOrigin))

	r.GET("/healthz", Healthz)

	api := r.Group("/api")
	{
		api.POST("/entries", h.CreateEntry)
		api.GET("/entries", h.ListEntries)
		api.POST("/entries/analyze", h.AnalyzeEntries)
		api.POST("/analyze", h.AnalyzeText)
		api.GET("/insights", h.GetInsights)
		api.GET("/insights/generate", h.GenerateInsight)
		api.GET("/ai/status", h.AIStatus)
	}

	return r
}
