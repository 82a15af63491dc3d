package bidrequest

import (
	"errors"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBidRequestNotFound = errors.New("bid request not found")
	ErrBidNotFound        = errors.New("bid not found")
	ErrNotOwner           = errors.New("bid request belongs to another customer")
	ErrNotOpen            = errors.New("bid request is no longer open")
	ErrBidNotPending      = errors.New("bid already decided")
	ErrAlreadyBid         = errors.New("provider already placed a bid")
	ErrProviderNotFound   = errors.New("provider does not exist")
	ErrServiceNotFound    = errors.New("service does not exist")
	ErrAlreadyBooked      = errors.New("customer already has an active booking for this service")
)
