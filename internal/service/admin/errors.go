package admin

import (
	"errors"
)

var (
	ErrProviderConflict = errors.New("provider already exists")
	ErrServiceConflict  = errors.New("service already exists")
	ErrProviderNotFound = errors.New("provider does not exist")
	ErrServiceNotFound  = errors.New("service not found")
	ErrInvalidInput     = errors.New("invalid input")
)
