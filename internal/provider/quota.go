package provider

import (
	"errors"
	"fmt"
	"time"
)

// QuotaError is the distinguished failure signal a provider returns when its
// upstream service demands a cool-down before the next attempt. The chain
// executor handles it explicitly instead of falling through to the next
// provider.
type QuotaError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded (retry after %v): %v", e.RetryAfter, e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

// NewQuotaError wraps err with a suggested cool-down.
func NewQuotaError(err error, retryAfter time.Duration) error {
	return &QuotaError{Err: err, RetryAfter: retryAfter}
}

// AsQuota extracts a QuotaError from an error chain.
func AsQuota(err error) (*QuotaError, bool) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
