// Package ratelimit throttles outbound language-model requests.
//
// The pipeline fans out one similarity request per candidate, so a single
// analysis can burst twenty or more chat completions at once. Every model
// client is wrapped in a Limiter built from the rate_limit configuration:
//
//   - token_bucket: BurstSize tokens, one added every minute/RequestsPerMinute
//   - sliding_window: at most RequestsPerMinute requests in any minute
//
// Wait honours context cancellation so an aborted analysis releases its
// workers immediately.
package ratelimit
