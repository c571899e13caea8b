package retry

import "context"

// Outcome is the result of a soft-failing call: a value, or nothing when
// every attempt failed.
type Outcome[T any] struct {
	value T
	ok    bool
	err   error
}

// Some wraps a successful value.
func Some[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// None records an exhausted call.
func None[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// Get returns the value and whether one is present.
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.ok
}

// OrElse returns the value or fallback when absent.
func (o Outcome[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}

// Err is the terminal error of an absent outcome.
func (o Outcome[T]) Err() error {
	return o.err
}

// Soft runs op under cfg and converts exhaustion into an absent Outcome.
// The terminal error is logged, never returned.
func Soft[T any](ctx context.Context, op OperationWithResult[T], cfg *Config) Outcome[T] {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	v, err := DoWithResult(ctx, op, cfg)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.WithError(err).Error("call failed after retries")
		}
		return None[T](err)
	}
	return Some(v)
}
