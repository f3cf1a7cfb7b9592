package swapzone

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is returned once the retry budget for transient
// failures is exhausted, or when the upstream answer cannot be parsed.
var ErrUpstreamUnavailable = errors.New("swap service is unavailable")

// RejectedError is a non-retryable 4xx answer from the swap service.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("swap service rejected the request (%d): %s", e.Status, e.Body)
}

// AmbiguousCreationError signals that a transaction creation call failed
// after the request may have reached the upstream. The order might exist on
// their side, so the call must never be retried blindly.
type AmbiguousCreationError struct {
	Err error
}

func (e *AmbiguousCreationError) Error() string {
	return fmt.Sprintf("transaction creation outcome unknown: %v", e.Err)
}

func (e *AmbiguousCreationError) Unwrap() error { return e.Err }

// statusError carries a non-200 answer through the retry loop so the policy
// can tell transient from permanent statuses.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func isTransientStatus(status int) bool {
	switch status {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
