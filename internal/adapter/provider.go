// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to abstract provider-specific APIs behind a common interface.
package adapter

import (
	"context"
)

// AIProvider defines the interface for AI provider adapters.
type AIProvider interface {
	// ChatCompletionsCreate performs a chat completion request.
	// Messages may be Message values, pointers to them, or map[string]any.
	ChatCompletionsCreate(ctx context.Context, model string, messages []any, opts ...CallOption) (*ChatCompletionResponse, error)

	// Name returns the provider's identifier string.
	Name() string
}

// CallOptions holds the per-call options recognised by providers.
type CallOptions struct {
	Tools             []any
	SystemInstruction *string
}

// CallOption is a functional option for a single completion call.
type CallOption func(*CallOptions)

// WithTools offers tool definitions to the model. Entries may be Tool values or maps.
func WithTools(tools []any) CallOption {
	return func(o *CallOptions) {
		o.Tools = tools
	}
}

// WithSystemInstruction sets the system instruction used when no system message overrides it.
func WithSystemInstruction(s string) CallOption {
	return func(o *CallOptions) {
		o.SystemInstruction = &s
	}
}

func applyCallOptions(opts []CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
