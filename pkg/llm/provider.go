package llm

import (
	"context"
	"errors"
)

// Role identifies the author of a chat message. The set is closed: the
// inference endpoint rejects anything outside these three values.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    Role
	Content string
}

// ErrUnavailable indicates the model endpoint was unreachable, returned a
// non-success status, or the transport failed mid-stream.
var ErrUnavailable = errors.New("model endpoint unavailable")

// ErrMalformedResponse indicates the endpoint answered but the reply could
// not be parsed into text.
var ErrMalformedResponse = errors.New("malformed model response")

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// FragmentFunc receives one incremental piece of model output during
// streaming. It is invoked synchronously, in arrival order, once per
// non-empty fragment. Returning an error aborts the stream.
type FragmentFunc func(fragment string) error

// Provider defines the contract for any LLM backend.
//
// Chat and ChatStream make a single attempt; retry policy belongs to the
// caller.
type Provider interface {
	// Chat sends a chat history to the model and returns the full response.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history requesting incremental delivery and
	// returns the accumulated response. A transport failure before
	// end-of-stream yields ErrUnavailable; partial output must not be
	// trusted in that case.
	ChatStream(ctx context.Context, history []Message, onFragment FragmentFunc, options ...Option) (string, error)

	// Healthy reports endpoint reachability. It never returns an error.
	Healthy(ctx context.Context) bool

	// ListModels returns the names of the models the endpoint serves.
	ListModels(ctx context.Context) ([]string, error)
}
