package minigql

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// HTTPTransport adapts a standard *http.Client to the Transport interface.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client as a Transport. A nil client gets a default
// with a 30 second timeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{client: client}
}

// Send implements Transport. The Credentials field is advisory for this
// adapter: cookie behavior is governed by the wrapped client's Jar. Custom
// transports (e.g. browser-backed ones) may honor it directly.
func (t *HTTPTransport) Send(ctx context.Context, uri string, opts *SendOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, uri, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, err
	}
	if opts.Headers != nil {
		req.Header = opts.Headers.Clone()
	}
	return t.client.Do(req)
}
