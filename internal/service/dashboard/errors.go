package dashboard

import (
	"errors"
	"fmt"
	"time"

	dashcore "github.com/kirinyoku/eventmarket/internal/dashboard"
)

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceUnavailable = errors.New("service is not available for booking")
	ErrNotBookable        = errors.New("service cannot be booked right now")
	ErrSlotTaken          = errors.New("time slot already booked")
	ErrSubmissionInFlight = errors.New("a booking for this service is already being submitted")
	ErrRateLimited        = errors.New("too many booking submissions")
)

// NotBookableError carries the availability state that blocked a
// submission.
type NotBookableError struct {
	State dashcore.AvailabilityState
}

func (e NotBookableError) Error() string {
	return fmt.Sprintf("service cannot be booked: %s", e.State.Label())
}

func (e NotBookableError) Unwrap() error {
	return ErrNotBookable
}

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
