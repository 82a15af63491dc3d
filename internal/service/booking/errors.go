package booking

import (
	"errors"
)

var (
	ErrInvalidBooking     = errors.New("invalid booking")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceUnavailable = errors.New("service is not available for booking")
	ErrSlotTaken          = errors.New("time slot already booked")
	ErrAlreadyBooked      = errors.New("customer already has an active booking for this service")
	ErrInvalidTransition  = errors.New("booking status transition not allowed")
)

// IsRejection reports whether err is a final answer about the booking
// itself, as opposed to an infrastructure failure worth retrying.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidBooking,
		ErrServiceNotFound,
		ErrServiceUnavailable,
		ErrSlotTaken,
		ErrAlreadyBooked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
