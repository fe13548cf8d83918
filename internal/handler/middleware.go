// Package handler provides HTTP handlers for the Gemini adapter.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-gemini-adapter/internal/ui"
)

// CORSMiddleware returns a middleware that enables permissive CORS.
// This allows web applications to call the API directly.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// LoggingMiddleware returns a middleware that logs request details.
// When console is true each request is also printed as a colored line.
func LoggingMiddleware(logger *slog.Logger, console bool) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		model := c.GetString(ctxKeyModel)
		finishReason := c.GetString(ctxKeyFinishReason)

		logger.Info("request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
			slog.String("model", model),
			slog.String("finish_reason", finishReason),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		if console {
			ui.PrintRequest(ui.RequestLine{
				Method:       c.Request.Method,
				Path:         path,
				Status:       c.Writer.Status(),
				Latency:      latency,
				Model:        model,
				FinishReason: finishReason,
			})
		}
	}
}

// RecoveryMiddleware returns a middleware that recovers from panics.
// It logs the error and returns a 500 response in OpenAI-compatible format.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"message": "Internal server error",
						"type":    "server_error",
						"code":    "internal_error",
					},
				})
			}
		}()

		c.Next()
	}
}
