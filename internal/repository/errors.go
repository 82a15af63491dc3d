package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyBooked  = errors.New("service already booked by customer")
	ErrDuplicateBid   = errors.New("provider already bid on request")
	ErrDuplicateRef   = errors.New("client reference already used by customer")
	ErrStaleStatus    = errors.New("status changed concurrently")
	ErrInvalidForeign = errors.New("referenced row does not exist")
)
