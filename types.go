package minigql

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Request describes one GraphQL operation. Query is mandatory; everything
// else is optional and defaults to the client-level configuration.
type Request struct {
	// Query is the operation text. It is treated as an opaque string; the
	// client performs no parsing or validation.
	Query string

	// Variables is any JSON-marshalable value. Nil means "no variables" and
	// is omitted from the serialized body.
	Variables any

	// Headers are merged over the client-level default headers; on a key
	// conflict the request header wins.
	Headers http.Header

	// CacheTTL overrides the client cache TTL for this call only. Nil means
	// "use the client default"; zero or negative disables both cache reads
	// and cache writes for the call.
	CacheTTL *time.Duration
}

// SendOptions is the outbound request shape handed to the Transport.
type SendOptions struct {
	Method      string
	Headers     http.Header
	Credentials string
	Body        []byte
}

// Transport performs a single HTTP exchange. It is the one injected
// collaborator the engine depends on: an error return is classified as a
// transport failure, a response is classified by its status code.
type Transport interface {
	Send(ctx context.Context, uri string, opts *SendOptions) (*http.Response, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, uri string, opts *SendOptions) (*http.Response, error)

func (f TransportFunc) Send(ctx context.Context, uri string, opts *SendOptions) (*http.Response, error) {
	return f(ctx, uri, opts)
}

// RequestEvent is passed to the request hook just before the retry loop
// starts.
type RequestEvent struct {
	Query       string
	Variables   any
	CacheTTL    time.Duration
	URI         string
	SendOptions *SendOptions
}

// ResponseEvent is passed to the response hook after the retry loop settled,
// whether it settled in success or failure.
type ResponseEvent struct {
	RequestEvent
	// Response is the last HTTP response obtained, if any. Its body has
	// already been consumed.
	Response *http.Response
	// Body is the decoded response body, if one was decoded.
	Body json.RawMessage
	// Err is the pending error the call is about to fail with, if any.
	Err error
}

// RequestHook and ResponseHook observe the request lifecycle. Both are
// best-effort: a non-nil error return is logged and swallowed, it never
// aborts or fails the call.
type (
	RequestHook  func(ctx context.Context, ev *RequestEvent) error
	ResponseHook func(ctx context.Context, ev *ResponseEvent) error
)

// Option configures a Client at construction time.
type Option func(*Client)
