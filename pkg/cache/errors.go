package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a repository, tag or stored item does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for transport failures: timeouts, refused
	// connections, 5xx responses and an unreachable Redis.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error as transient. After, when set, is the
// wait the remote asked for (a Retry-After header).
type RetryableError struct {
	Err   error
	After time.Duration
}

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryAfter marks err as transient with a server-requested wait.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is an exponential retry policy for [RetryableError]s.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	// MaxDelay caps both the doubled delay and a requested RetryAfter.
	// A longer requested wait gives up instead of sleeping.
	MaxDelay time.Duration
}

// DefaultBackoff tries three times, waiting 1s then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or
// the attempts run out. It returns ctx.Err() if ctx ends while waiting.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || i == attempts-1 {
			return err
		}

		wait := delay
		if re.After > 0 {
			if b.MaxDelay > 0 && re.After > b.MaxDelay {
				return err
			}
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return err
}
