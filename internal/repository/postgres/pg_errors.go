package postgresrepo

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirinyoku/eventmarket/internal/repository"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"

	constraintActiveBooking = "bookings_active_customer_service"
	constraintBidPerRequest = "bids_request_provider_key"
	constraintClientRef     = "bookings_customer_client_ref_key"
)

// IsRetryable reports whether err is a transient transaction failure that
// is safe to retry from the beginning of the transaction.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return true
		}
	}

	return false
}

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case codeUniqueViolation:
			switch pge.ConstraintName {
			case constraintActiveBooking:
				return repository.ErrAlreadyBooked
			case constraintBidPerRequest:
				return repository.ErrDuplicateBid
			case constraintClientRef:
				return repository.ErrDuplicateRef
			}
			return repository.ErrConflict
		case codeForeignKeyViolation:
			return repository.ErrInvalidForeign
		}
	}

	return err
}
