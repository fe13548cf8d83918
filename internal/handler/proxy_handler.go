// Package handler provides HTTP handlers for the Gemini adapter.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-gemini-adapter/internal/adapter"
	"github.com/hpn/hpn-gemini-adapter/internal/gemini"
)

// Context keys shared with the logging middleware.
const (
	ctxKeyModel        = "model"
	ctxKeyFinishReason = "finish_reason"
)

// ProxyHandler serves OpenAI-compatible chat completions through an AIProvider.
// It performs exactly one provider call per request; failures are reported, not retried.
type ProxyHandler struct {
	provider       adapter.AIProvider
	logger         *slog.Logger
	models         []string
	requestTimeout time.Duration
}

// ProxyHandlerOption is a functional option for configuring ProxyHandler.
type ProxyHandlerOption func(*ProxyHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ProxyHandlerOption {
	return func(h *ProxyHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithModels sets the model list returned by GET /v1/models.
func WithModels(models []string) ProxyHandlerOption {
	return func(h *ProxyHandler) {
		h.models = models
	}
}

// WithRequestTimeout bounds each provider call. Zero leaves calls unbounded.
func WithRequestTimeout(d time.Duration) ProxyHandlerOption {
	return func(h *ProxyHandler) {
		h.requestTimeout = d
	}
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(provider adapter.AIProvider, opts ...ProxyHandlerOption) *ProxyHandler {
	h := &ProxyHandler{
		provider: provider,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleChatCompletion handles POST /v1/chat/completions.
func (h *ProxyHandler) HandleChatCompletion(c *gin.Context) {
	var req adapter.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendOpenAIError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	if req.Model == "" {
		h.sendOpenAIError(c, http.StatusBadRequest, "invalid_request_error", "model is required")
		return
	}
	if len(req.Messages) == 0 {
		h.sendOpenAIError(c, http.StatusBadRequest, "invalid_request_error", "messages array is required")
		return
	}
	c.Set(ctxKeyModel, req.Model)

	messages := make([]any, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = m
	}

	var opts []adapter.CallOption
	if len(req.Tools) > 0 {
		tools := make([]any, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = t
		}
		opts = append(opts, adapter.WithTools(tools))
	}
	if req.SystemInstruction != "" {
		opts = append(opts, adapter.WithSystemInstruction(req.SystemInstruction))
	}

	ctx := c.Request.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	resp, err := h.provider.ChatCompletionsCreate(ctx, req.Model, messages, opts...)
	if err != nil {
		h.handleProviderError(c, req.Model, err)
		return
	}

	if len(resp.Choices) > 0 {
		c.Set(ctxKeyFinishReason, resp.Choices[0].FinishReason)
	}

	h.logger.Info("chat completion served",
		slog.String("provider", h.provider.Name()),
		slog.String("model", req.Model),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)

	c.JSON(http.StatusOK, resp)
}

// handleProviderError translates a provider failure into an OpenAI error response.
func (h *ProxyHandler) handleProviderError(c *gin.Context, model string, err error) {
	status, errType, message := classifyError(err)

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(c.Request.Context(), level, "chat completion failed",
		slog.String("model", model),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	h.sendOpenAIError(c, status, errType, message)
}

// classifyError maps adapter and backend errors to HTTP status and OpenAI error type.
func classifyError(err error) (int, string, string) {
	if adapter.IsRequestError(err) {
		return http.StatusBadRequest, "invalid_request_error", err.Error()
	}

	if apiErr, ok := gemini.AsAPIError(err); ok {
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			return apiErr.StatusCode, "invalid_request_error", apiErr.Message
		case http.StatusUnauthorized, http.StatusForbidden:
			return apiErr.StatusCode, "authentication_error", apiErr.Message
		case http.StatusNotFound:
			return apiErr.StatusCode, "not_found_error", apiErr.Message
		case http.StatusTooManyRequests:
			return apiErr.StatusCode, "rate_limit_error", apiErr.Message
		}
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
			return apiErr.StatusCode, "api_error", apiErr.Message
		}
		return http.StatusBadGateway, "api_error", apiErr.Message
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout_error", "Upstream request timed out"
	}

	return http.StatusBadGateway, "server_error", "Upstream request failed"
}

// sendOpenAIError sends an error response in OpenAI-compatible format.
func (h *ProxyHandler) sendOpenAIError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, adapter.ErrorEnvelope{
		Error: adapter.ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}

// HandleModels handles GET /v1/models.
func (h *ProxyHandler) HandleModels(c *gin.Context) {
	data := make([]gin.H, 0, len(h.models))
	for _, m := range h.models {
		data = append(data, gin.H{
			"id":       m,
			"object":   "model",
			"created":  0,
			"owned_by": "google",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   data,
	})
}

// HandleHealth handles GET /health.
func (h *ProxyHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"provider": h.provider.Name(),
	})
}
