package minigql

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/flash-oss/mini-graphql-http-client/internal/backoff"
)

// WithEndpoint sets the GraphQL endpoint URI. Required.
func WithEndpoint(uri string) Option {
	return func(c *Client) {
		c.endpoint = uri
	}
}

// WithTransport sets the transport primitive performing the actual HTTP
// exchange. Required unless WithHTTPClient is used. There is no ambient
// default: the collaborator is always explicit.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient installs an HTTPTransport wrapping the given client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(client)
	}
}

// WithMethod sets the HTTP method, default POST.
func WithMethod(method string) Option {
	return func(c *Client) {
		c.method = method
	}
}

// WithRetryCount sets how many times a failed attempt is retried. The
// default 0 means exactly one attempt; n means up to n+1 attempts.
func WithRetryCount(n int) Option {
	return func(c *Client) {
		c.retryCount = n
	}
}

// WithHeaders sets client-level default headers, merged under per-request
// headers.
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		if headers == nil {
			headers = http.Header{}
		}
		c.headers = headers
	}
}

// WithCredentials sets the credentials mode forwarded to the transport in
// SendOptions, default "include". The HTTPTransport adapter treats it as
// advisory; fetch-like transports honor it directly.
func WithCredentials(credentials string) Option {
	return func(c *Client) {
		c.credentials = credentials
	}
}

// WithCacheTTL sets the default cache duration for queries. The default is
// ForeverTTL; zero or negative disables caching unless a request overrides
// it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithCacheStore injects a cache store, e.g. one shared across clients. It
// takes precedence over WithCacheSnapshot.
func WithCacheStore(store CacheStore) Option {
	return func(c *Client) {
		c.cache = store
	}
}

// WithCacheSnapshot hydrates the default in-memory store from a previously
// exported snapshot. Ignored when an explicit store is injected.
func WithCacheSnapshot(entries []SnapshotEntry) Option {
	return func(c *Client) {
		c.snapshot = entries
	}
}

// WithRequestHook sets the pre-request observer.
func WithRequestHook(hook RequestHook) Option {
	return func(c *Client) {
		c.requestHook = hook
	}
}

// WithResponseHook sets the post-request observer.
func WithResponseHook(hook ResponseHook) Option {
	return func(c *Client) {
		c.responseHook = hook
	}
}

// WithLogger sets the logging sink for debug traces and swallowed hook
// failures.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging. A logger must also be configured for
// output to appear.
func WithDebug() Option {
	return func(c *Client) {
		c.debug = true
	}
}

// WithSimpleLogger enables debug logging with the built-in stderr logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		c.debug = true
		c.logger = NewSimpleLogger()
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithBackoff inserts an exponential-jitter delay between retry attempts.
// By default attempts run back to back.
func WithBackoff(initial, max time.Duration, multiplier, jitter float64) Option {
	return func(c *Client) {
		c.backoffPolicy = backoff.Policy{
			Initial:    initial,
			Max:        max,
			Multiplier: multiplier,
			Jitter:     jitter,
			Strategy:   backoff.ExponentialJitter{},
		}
	}
}

// WithCircuitBreaker guards the transport with a circuit breaker.
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.circuitBreaker = NewCircuitBreaker(config)
	}
}

// WithRateLimiter applies a token bucket in front of every attempt.
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// validate checks the assembled configuration. It runs once inside New.
func (c *Client) validate() error {
	var problems []string

	if c.endpoint == "" {
		problems = append(problems, "endpoint is required")
	} else if u, err := url.Parse(c.endpoint); err != nil || u.Scheme == "" {
		problems = append(problems, "endpoint must be an absolute URL")
	}

	if c.transport == nil {
		problems = append(problems, "transport is required (WithTransport or WithHTTPClient)")
	}

	if c.method == "" {
		problems = append(problems, "method must not be empty")
	}

	if c.retryCount < 0 {
		problems = append(problems, "retry count must be non-negative")
	}

	if c.rateLimiter != nil && c.rateLimiter.maxTokens <= 0 {
		problems = append(problems, "rate limiter maxTokens must be positive")
	}

	if len(problems) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}

	return nil
}
