package minigql

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/flash-oss/mini-graphql-http-client/internal/backoff"
)

// ForeverTTL is the default cache TTL: effectively unbounded (about 292
// years), so entries only leave the cache through Clear or overwrite.
const ForeverTTL = time.Duration(math.MaxInt64)

// Client executes GraphQL operations over an injected HTTP transport with a
// fingerprint-keyed response cache and a bounded retry loop. It is safe for
// concurrent use; concurrent identical calls are deliberately not
// deduplicated, each runs its own retry sequence.
type Client struct {
	endpoint    string
	method      string
	transport   Transport
	retryCount  int
	headers     http.Header
	credentials string

	cache    CacheStore
	cacheTTL time.Duration
	snapshot []SnapshotEntry

	requestHook  RequestHook
	responseHook ResponseHook

	backoffPolicy  backoff.Policy
	circuitBreaker *CircuitBreaker
	rateLimiter    *RateLimiter

	logger  Logger
	debug   bool
	metrics *MetricsCollector
}

// New constructs a Client from functional options. WithEndpoint and a
// transport (WithTransport or WithHTTPClient) are required; everything else
// has defaults. Configuration problems are returned as a Validation
// ClientError.
func New(options ...Option) (*Client, error) {
	client := &Client{
		method:      http.MethodPost,
		retryCount:  0,
		headers:     http.Header{},
		credentials: "include",
		cacheTTL:    ForeverTTL,
	}

	for _, option := range options {
		option(client)
	}

	// An explicitly injected store always wins over snapshot hydration,
	// regardless of option order.
	if client.cache == nil {
		if client.snapshot != nil {
			client.cache = NewMemoryStoreFromSnapshot(client.snapshot)
		} else {
			client.cache = NewMemoryStore()
		}
	}
	client.snapshot = nil

	if err := client.validate(); err != nil {
		return nil, err
	}

	return client, nil
}

// requestBody is the wire shape of one operation. Variables are omitted when
// absent so that "no variables" and "variables: null" fingerprint alike
// across callers.
type requestBody struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

// Query executes a query. With a positive effective cache TTL the response
// is served from and stored into the cache, keyed by the fingerprint of the
// serialized body. The returned payload is the full decoded response body
// (data and errors); GraphQL-level errors are never raised as Go errors,
// they only block caching.
func (c *Client) Query(ctx context.Context, req *Request) (json.RawMessage, error) {
	if req == nil || req.Query == "" {
		return nil, &ClientError{Type: ErrorTypeValidation, Message: "query is required"}
	}

	ttl := c.cacheTTL
	if req.CacheTTL != nil {
		ttl = *req.CacheTTL
	}

	return c.run(ctx, "query", req, ttl)
}

// Mutate executes a mutation: a Query with the cache TTL forced to zero, so
// it never reads or writes the cache. The Request's Query field carries the
// mutation text. The retry loop and hook contract are shared unchanged.
func (c *Client) Mutate(ctx context.Context, req *Request) (json.RawMessage, error) {
	if req == nil || req.Query == "" {
		return nil, &ClientError{Type: ErrorTypeValidation, Message: "mutation is required"}
	}

	return c.run(ctx, "mutate", req, 0)
}

// Cache returns the client's cache store, e.g. for snapshot export or an
// explicit Clear.
func (c *Client) Cache() CacheStore {
	return c.cache
}

func (c *Client) run(ctx context.Context, op string, req *Request, ttl time.Duration) (json.RawMessage, error) {
	start := time.Now()

	body, err := json.Marshal(requestBody{Query: req.Query, Variables: req.Variables})
	if err != nil {
		return nil, &ClientError{Type: ErrorTypeValidation, Message: "variables are not serializable", Cause: err}
	}
	key := Fingerprint(string(body))

	c.metrics.RecordRequestStart(op)
	defer c.metrics.RecordRequestEnd(op)

	if ttl > 0 {
		if payload, ok := c.cache.Lookup(key, time.Now()); ok {
			c.metrics.RecordCacheHit(op)
			c.metrics.RecordRequest(op, http.StatusOK, time.Since(start))
			c.logDebug("cache hit", "operation", op, "key", key)
			return payload, nil
		}
		c.metrics.RecordCacheMiss(op)
	}

	opts := c.buildSendOptions(body, req.Headers)

	event := RequestEvent{
		Query:       req.Query,
		Variables:   req.Variables,
		CacheTTL:    ttl,
		URI:         c.endpoint,
		SendOptions: opts,
	}
	if c.requestHook != nil {
		if err := c.requestHook(ctx, &event); err != nil {
			c.logWarn("request hook failed", "operation", op, "error", err)
		}
	}

	payload, lastResp, pending := c.attempt(ctx, op, opts)

	if c.responseHook != nil {
		respEvent := &ResponseEvent{
			RequestEvent: event,
			Response:     lastResp,
			Body:         payload,
			Err:          errOrNil(pending),
		}
		if err := c.responseHook(ctx, respEvent); err != nil {
			c.logWarn("response hook failed", "operation", op, "error", err)
		}
	}

	// Cacheability gate: every condition must hold, a call that "succeeded"
	// in any weaker sense is not stored.
	if ttl > 0 && pending == nil && lastResp != nil && isOK(lastResp) && payload != nil && !hasGraphQLErrors(payload) {
		c.cache.Store(key, payload, time.Now(), ttl)
		if mem, ok := c.cache.(*MemoryStore); ok {
			c.metrics.RecordCacheSize("default", mem.Len())
		}
		c.logDebug("response cached", "operation", op, "key", key, "ttl", ttl)
	}

	statusCode := 0
	if lastResp != nil {
		statusCode = lastResp.StatusCode
	}
	c.metrics.RecordRequest(op, statusCode, time.Since(start))

	if pending != nil {
		c.metrics.RecordError(pending.Type, op)
		return nil, pending
	}
	if payload == nil {
		// Defensive fallback; a settled loop without body or error is not a
		// normal path.
		return json.RawMessage("{}"), nil
	}
	return payload, nil
}

// attempt drives the bounded sequential retry loop. It returns the decoded
// body (on success), the last HTTP response obtained (if any) and the
// pending error the call should fail with (if any).
//
// Classification per attempt:
//   - transport error: pending Network error, retry if attempts remain
//   - status >= 500: pending Server error from this status, retry; the last
//     observed 5xx wins over any earlier pending failure
//   - 2xx: decode, clear pending, stop without consuming further attempts
//   - anything else (4xx and similar): terminal Client error, stop
func (c *Client) attempt(ctx context.Context, op string, opts *SendOptions) (json.RawMessage, *http.Response, *ClientError) {
	attempts := c.retryCount + 1
	if attempts < 1 {
		attempts = 1
	}

	var (
		payload  json.RawMessage
		lastResp *http.Response
		pending  *ClientError
	)

	for i := 0; i < attempts; i++ {
		if c.rateLimiter != nil {
			if !c.rateLimiter.Allow() {
				pending = &ClientError{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Attempt: i + 1, MaxRetries: c.retryCount}
				break
			}
			c.metrics.RecordRateLimiterTokens("default", c.rateLimiter.Tokens())
		}

		if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
			pending = &ClientError{Type: ErrorTypeCircuitOpen, Message: "circuit breaker is open", Attempt: i + 1, MaxRetries: c.retryCount}
			break
		}

		if i > 0 {
			c.metrics.RecordRetry(op, i)
			if delay := c.backoffPolicy.Delay(i - 1); delay > 0 {
				time.Sleep(delay)
			}
			c.logDebug("retry attempt", "operation", op, "attempt", i+1, "maxAttempts", attempts)
		}

		resp, err := c.transport.Send(ctx, c.endpoint, opts)
		if err != nil {
			c.recordBreaker(false)
			pending = &ClientError{Type: ErrorTypeNetwork, Message: "transport request failed", Cause: err, Attempt: i + 1, MaxRetries: c.retryCount}
			continue
		}

		lastResp = resp

		switch {
		case resp.StatusCode >= 500:
			c.recordBreaker(false)
			drain(resp)
			pending = &ClientError{
				Type:       ErrorTypeServer,
				Message:    "server error: " + statusLine(resp),
				StatusCode: resp.StatusCode,
				Attempt:    i + 1,
				MaxRetries: c.retryCount,
			}
			// keep looping; on exhaustion this last 5xx surfaces

		case isOK(resp):
			c.recordBreaker(true)
			raw, decodeErr := readBody(resp)
			if decodeErr != nil {
				pending = &ClientError{Type: ErrorTypeDecode, Message: "response body is not valid JSON", Cause: decodeErr, StatusCode: resp.StatusCode}
				return nil, lastResp, pending
			}
			payload = raw
			pending = nil
			return payload, lastResp, nil

		default:
			c.recordBreaker(true)
			drain(resp)
			pending = &ClientError{
				Type:       ErrorTypeClient,
				Message:    statusLine(resp),
				StatusCode: resp.StatusCode,
			}
			return nil, lastResp, pending
		}
	}

	return payload, lastResp, pending
}

// buildSendOptions merges headers lowest priority first: the JSON content
// type, then client-level headers, then per-call headers.
func (c *Client) buildSendOptions(body []byte, reqHeaders http.Header) *SendOptions {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	for _, layer := range []http.Header{c.headers, reqHeaders} {
		for key, values := range layer {
			headers.Del(key)
			for _, v := range values {
				headers.Add(key, v)
			}
		}
	}

	return &SendOptions{
		Method:      c.method,
		Headers:     headers,
		Credentials: c.credentials,
		Body:        body,
	}
}

func (c *Client) recordBreaker(success bool) {
	if c.circuitBreaker == nil {
		return
	}
	if success {
		c.circuitBreaker.RecordSuccess()
	} else {
		c.circuitBreaker.RecordFailure()
	}
	c.metrics.RecordCircuitBreakerState("default", c.circuitBreaker.State())
}

func (c *Client) logDebug(msg string, keysAndValues ...any) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, keysAndValues...)
	}
}

func (c *Client) logWarn(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, keysAndValues...)
	}
}

func isOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// statusLine renders "code text" from a response, tolerating transports that
// leave Status empty.
func statusLine(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = "unknown status"
	}
	return strconv.Itoa(resp.StatusCode) + " " + text
}

// readBody consumes and validates the JSON body of a 2xx response.
func readBody(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// drain closes a response body we are not going to decode.
func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}
}

// hasGraphQLErrors reports whether a decoded body carries a non-empty
// top-level errors collection.
func hasGraphQLErrors(payload json.RawMessage) bool {
	var probe struct {
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	return len(probe.Errors) > 0
}

func errOrNil(err *ClientError) error {
	if err == nil {
		return nil
	}
	return err
}
