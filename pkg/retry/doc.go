// Package retry wraps fallible calls with bounded retries and backoff.
//
// Do and DoWithResult return the terminal error. Soft is the variant used for
// model calls: it never fails, it yields an Outcome that is empty when every
// attempt failed, and the caller decides the fallback.
//
//	out := retry.Soft(ctx, func(ctx context.Context) (string, error) {
//		return client.Generate(ctx, prompt)
//	}, retry.FromConfig(cfg.Retry, log))
//	text := out.OrElse("")
//
// The default policy makes 20 attempts with exponential delays starting at
// 100ms and growing by a factor of 1.05, and retries every error.
package retry
