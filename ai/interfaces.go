package ai

import "context"

// Model is a chat-capable language model.
// Implementations must be safe for sequential reuse across many calls.
type Model interface {
	// Invoke sends the conversation to the model and returns the text of the
	// first completion. Transport failures, refusals and empty responses are
	// returned as errors.
	Invoke(ctx context.Context, messages []Message, opts ...InvokeOption) (string, error)
}

// StreamFunc receives incremental output while a completion is generated.
// Returning an error aborts the call.
type StreamFunc func(ctx context.Context, chunk string) error

// InvokeOptions holds per-call settings collected from InvokeOption values.
type InvokeOptions struct {
	// Stream, when set, receives output chunks as they arrive.
	Stream StreamFunc

	// Temperature overrides the configured sampling temperature when non-nil.
	Temperature *float64

	// MaxTokens overrides the configured output limit when > 0.
	MaxTokens int
}

// InvokeOption is a functional option for a single Invoke call.
type InvokeOption func(*InvokeOptions)

// WithStream routes incremental output to fn.
func WithStream(fn StreamFunc) InvokeOption {
	return func(o *InvokeOptions) {
		o.Stream = fn
	}
}

// WithTemperature overrides the sampling temperature for one call.
func WithTemperature(t float64) InvokeOption {
	return func(o *InvokeOptions) {
		o.Temperature = &t
	}
}

// WithMaxTokens overrides the output token limit for one call.
func WithMaxTokens(n int) InvokeOption {
	return func(o *InvokeOptions) {
		o.MaxTokens = n
	}
}

// ApplyInvokeOptions collects opts into an InvokeOptions value.
func ApplyInvokeOptions(opts ...InvokeOption) InvokeOptions {
	var o InvokeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
