// Package gemini is a minimal client for the Google Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the default Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client holds the credential and transport shared by every model handle.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the Gemini API.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client authenticated with apiKey.
// The default HTTP client has no timeout; bound calls through the context.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GenerativeModel is a handle on one model plus its per-request configuration.
type GenerativeModel struct {
	c    *Client
	name string

	Tools             []Tool
	SystemInstruction *Content
}

// GenerativeModel returns a handle for the named model.
func (c *Client) GenerativeModel(name string) *GenerativeModel {
	return &GenerativeModel{c: c, name: name}
}

// Name returns the model identifier.
func (m *GenerativeModel) Name() string {
	return m.name
}

// GenerateContent sends the conversation and waits for the full response.
func (m *GenerativeModel) GenerateContent(ctx context.Context, contents ...Content) (*GenerateContentResponse, error) {
	if contents == nil {
		contents = []Content{}
	}
	req := GenerateContentRequest{
		Contents:          contents,
		Tools:             m.Tools,
		SystemInstruction: m.SystemInstruction,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", m.c.baseURL, url.PathEscape(m.name))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", m.c.apiKey)

	resp, err := m.c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var out GenerateContentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini response: %w", err)
	}
	return &out, nil
}

func newAPIError(code int, body []byte) *APIError {
	var env errorResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return &APIError{StatusCode: code, Status: env.Error.Status, Message: env.Error.Message}
	}
	return &APIError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}

// AsAPIError reports whether err wraps an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
