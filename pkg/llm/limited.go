package llm

import (
	"context"
	"time"

	"scoreahack/pkg/logger"
	"scoreahack/pkg/ratelimit"
)

// Limited throttles a client, bounds each call by a timeout, and logs every
// round trip.
type Limited struct {
	next    Client
	limiter ratelimit.Limiter
	timeout time.Duration
	logger  logger.Logger
}

// NewLimited wraps next. A nil limiter never throttles and a zero timeout
// leaves the caller's deadline in charge.
func NewLimited(next Client, limiter ratelimit.Limiter, timeout time.Duration, log logger.Logger) *Limited {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Limited{next: next, limiter: limiter, timeout: timeout, logger: log}
}

func (l *Limited) Provider() string {
	if n, ok := l.next.(Named); ok {
		return n.Provider()
	}
	return "custom"
}

func (l *Limited) Model() string {
	if n, ok := l.next.(Named); ok {
		return n.Model()
	}
	return ""
}

// Generate waits for a slot, then delegates
func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	logger.LogModelCall(l.logger.WithContext(ctx), l.Provider(), l.Model(), time.Since(start), err)
	return out, err
}

// Close releases the wrapped client when it holds resources
func (l *Limited) Close() error {
	if c, ok := l.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
