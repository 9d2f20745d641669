package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrInvalidTransition marks a rejected game status transition. The
	// stored state is preserved; callers log and continue.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSourceRateLimited marks an HTTP 429 from a provider. Use
	// RateLimitRetryAfter to recover the backoff hint.
	ErrSourceRateLimited = errors.New("source rate limited")
)

// RateLimitedError carries the provider's backoff hint alongside the
// ErrSourceRateLimited sentinel.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("source rate limited (retry after %s)", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrSourceRateLimited
}

// RateLimitRetryAfter extracts the retry hint from an error chain; zero when
// the provider gave none.
func RateLimitRetryAfter(err error) time.Duration {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return 0
}
