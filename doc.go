// Package minigql is a minimal GraphQL-over-HTTP client with a built-in,
// pluggable in-memory response cache and bounded retries:
//
//   - Fingerprint-keyed response cache with per-request TTL overrides and
//     portable JSON snapshots for warm starts and cross-instance sharing
//   - Bounded sequential retry loop: transport failures and 5xx retry, 4xx
//     fails fast, success never consumes spare attempts
//   - Optional exponential backoff with jitter between attempts
//   - Circuit breaker and token-bucket rate limiter, both opt-in
//   - Best-effort request/response hooks (failures are logged, never raised)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - The transport is an explicit injected collaborator, never an ambient
//     global; any fetch-like primitive can be adapted
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	client, err := minigql.New(
//	    minigql.WithEndpoint("https://api.example.com/graphql"),
//	    minigql.WithHTTPClient(nil),
//	    minigql.WithRetryCount(3),
//	    minigql.WithCacheTTL(5*time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := client.Query(ctx, &minigql.Request{Query: "{ viewer { login } }"})
//
// Queries are opaque strings; the client performs no GraphQL parsing or
// schema validation. GraphQL-level errors inside a 2xx body are returned as
// part of the payload, not as Go errors – they only make the response
// ineligible for caching. Concurrent identical requests are intentionally
// not deduplicated: each call runs its own retry sequence.
package minigql
