// Package main is the entry point for the hpn-gemini-adapter server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-gemini-adapter/internal/adapter"
	"github.com/hpn/hpn-gemini-adapter/internal/config"
	"github.com/hpn/hpn-gemini-adapter/internal/handler"
	"github.com/hpn/hpn-gemini-adapter/internal/security"
	"github.com/hpn/hpn-gemini-adapter/internal/ui"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yaml (default: search ., ./configs, /etc/hpn-gemini-adapter)")
	pflag.Parse()

	ui.PrintBanner()

	// =========================================================================
	// 1. Load configuration (Singleton)
	// =========================================================================
	cfg, err := config.GetConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// =========================================================================
	// 2. Setup structured logger (redacted)
	// =========================================================================
	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("gemini_base_url", cfg.Gemini.BaseURL),
		slog.Duration("request_timeout", cfg.Gemini.RequestTimeout()),
	)

	// =========================================================================
	// 3. Create the Gemini adapter
	// =========================================================================
	provider, err := adapter.NewGeminiAdapter(
		adapter.WithAPIKey(cfg.Gemini.APIKey),
		adapter.WithBaseURL(cfg.Gemini.BaseURL),
		adapter.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create gemini adapter", slog.Any("error", err))
		os.Exit(1)
	}

	proxyHandler := handler.NewProxyHandler(
		provider,
		handler.WithLogger(logger),
		handler.WithModels(cfg.Gemini.Models),
		handler.WithRequestTimeout(cfg.Gemini.RequestTimeout()),
	)

	// =========================================================================
	// 4. Setup Gin router with middleware
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(proxyHandler, logger, true)

	// =========================================================================
	// 5. Start HTTP server with graceful shutdown
	// =========================================================================
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("address", addr))
		ui.PrintStartupInfo(addr, cfg.Gemini.BaseURL, cfg.Gemini.Models)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}

// newRouter registers the OpenAI-compatible routes and middleware.
func newRouter(h *handler.ProxyHandler, logger *slog.Logger, console bool) *gin.Engine {
	router := gin.New()

	router.Use(handler.RecoveryMiddleware(logger))
	router.Use(handler.CORSMiddleware())
	router.Use(handler.LoggingMiddleware(logger, console))

	router.POST("/v1/chat/completions", h.HandleChatCompletion)
	router.GET("/v1/models", h.HandleModels)
	router.GET("/health", h.HandleHealth)

	// Also support without /v1 prefix for compatibility
	router.POST("/chat/completions", h.HandleChatCompletion)

	return router
}

// newLogger builds the redacting slog logger described by cfg.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if cfg.Format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	return slog.New(security.NewRedactedHandler(inner))
}
