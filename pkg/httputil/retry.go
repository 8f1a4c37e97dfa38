package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"

	navErrors "github.com/matzehuels/navtree/pkg/errors"
)

// RetryableError marks a failed store call that may succeed when repeated.
// [CheckStatus] and [TransportError] produce it; [Retry] consumes it.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RetryableStatus reports whether a store response with the given status is
// worth repeating: 408, 429 and every 5xx except 501. A 501 means the
// backend lacks the operation, which no retry fixes.
func RetryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status == http.StatusNotImplemented:
		return false
	}
	return status >= 500
}

// TransportError classifies a failure to get any response for op. A request
// cut short by ctx becomes a TIMEOUT and is final; anything else is a
// retryable NETWORK_ERROR.
func TransportError(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil {
		return navErrors.Wrap(navErrors.ErrCodeTimeout, err, "%s", op)
	}
	return &RetryableError{Err: navErrors.Wrap(navErrors.ErrCodeNetwork, err, "%s", op)}
}

// Retry executes fn up to attempts times, doubling delay after each
// retryable failure. Errors not wrapped in [RetryableError] end the loop at
// once. The returned error has the RetryableError wrapper removed, so callers
// see the coded error underneath. ctx.Err() is returned if ctx ends while
// waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var retryable *RetryableError
	if errors.As(lastErr, &retryable) {
		return retryable.Err
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with 3 attempts and a 1 second initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// IsRetryable reports whether err is, or wraps, a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
