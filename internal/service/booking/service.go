package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/eventmarket/internal/dashboard"
	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/repository"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

// errDuplicateRef means a concurrent request stored the same client
// reference first.
var errDuplicateRef = errors.New("client reference already used")

type Service struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Service {
	return &Service{
		deps:   deps,
		logger: logger,
	}
}

// Validate checks the parts of a draft that do not need the database.
func Validate(d domain.BookingDraft) error {
	switch {
	case strings.TrimSpace(d.CustomerID) == "":
		return fmt.Errorf("%w: customerId is required", ErrInvalidBooking)
	case strings.TrimSpace(d.ServiceID) == "":
		return fmt.Errorf("%w: serviceId is required", ErrInvalidBooking)
	case d.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidBooking)
	case d.GuestCount < 0:
		return fmt.Errorf("%w: guestCount must not be negative", ErrInvalidBooking)
	}

	if _, err := time.Parse(domain.DateLayout, dashboard.NormalizeDate(d.EventDate)); err != nil {
		return fmt.Errorf("%w: eventDate must be YYYY-MM-DD", ErrInvalidBooking)
	}

	if clock := dashboard.NormalizeClock(d.EventTime); clock != "" {
		if _, err := time.Parse(domain.ClockLayout, clock); err != nil {
			return fmt.Errorf("%w: eventTime must be HH:MM", ErrInvalidBooking)
		}
	}

	return nil
}

// Create persists a booking submitted from the dashboard. Creating the same
// draft twice returns the first booking. The temp id is only matched
// against the same customer's bookings.
//
// Parameters:
//   - ctx: request-scoped context.
//   - d: the accepted draft; d.TempID is the idempotency reference.
//
// Returns:
//   - domain.Booking: the stored booking, status pending.
//   - error: booking.ErrServiceNotFound / ErrServiceUnavailable if the
//     service cannot be booked.
//   - error: booking.ErrSlotTaken if the slot collides with the schedule.
//   - error: booking.ErrAlreadyBooked if the customer already holds an
//     active booking for the service.
func (s *Service) Create(ctx context.Context, d domain.BookingDraft) (domain.Booking, error) {
	const op = "service.booking.Create"

	if err := Validate(d); err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	if d.TempID != "" {
		existing, err := s.deps.Repos.Bookings(nil).GetByClientRef(ctx, d.CustomerID, d.TempID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var out domain.Booking
	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		svc, err := s.deps.Repos.Services(tx).GetService(ctx, d.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrServiceNotFound
			}
			return err
		}

		if !svc.IsActive {
			return ErrServiceUnavailable
		}

		schedule, err := s.deps.Repos.Bookings(tx).Schedule(ctx, svc.ID)
		if err != nil {
			return err
		}

		if dashboard.HasConflict(schedule, d.EventDate, d.EventTime) {
			return ErrSlotTaken
		}

		out, err = s.deps.Repos.Bookings(tx).Create(ctx, domain.Booking{
			ID:              uuid.NewString(),
			TempID:          d.TempID,
			ServiceID:       svc.ID,
			ProviderID:      svc.ProviderID,
			CustomerID:      d.CustomerID,
			ServiceName:     svc.Name,
			ServiceCategory: svc.Category,
			EventDate:       dashboard.NormalizeDate(d.EventDate),
			EventTime:       dashboard.NormalizeClock(d.EventTime),
			Location:        d.Location,
			Status:          domain.BookingPending,
			Budget:          d.Budget,
			GuestCount:      d.GuestCount,
			Requirements:    d.Requirements,
		})
		switch {
		case errors.Is(err, repository.ErrAlreadyBooked):
			return ErrAlreadyBooked
		case errors.Is(err, repository.ErrDuplicateRef):
			return errDuplicateRef
		case err != nil:
			return err
		}

		booking := out
		after(func(ctx context.Context) {
			s.changed(ctx, booking)
		})

		return nil
	})
	if errors.Is(err, errDuplicateRef) && d.TempID != "" {
		existing, gerr := s.deps.Repos.Bookings(nil).GetByClientRef(ctx, d.CustomerID, d.TempID)
		if gerr != nil {
			return domain.Booking{}, fmt.Errorf("%s: %w", op, gerr)
		}
		return existing, nil
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("booking created",
		slog.String("booking_id", out.ID),
		slog.String("customer_id", out.CustomerID),
		slog.String("service_id", out.ServiceID),
	)

	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.deps.Repos.Bookings(nil).Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	const op = "service.booking.ListForCustomer"

	bookings, err := s.deps.Repos.Bookings(nil).ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// UpdateStatus moves a booking along its lifecycle.
//
// Returns:
//   - domain.Booking: the updated booking.
//   - error: booking.ErrBookingNotFound if there is no such booking.
//   - error: booking.ErrInvalidTransition if the move is not allowed from
//     the current status.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.BookingStatus) (domain.Booking, error) {
	const op = "service.booking.UpdateStatus"

	if !next.Valid() {
		return domain.Booking{}, fmt.Errorf("%s: %w: unknown status %q", op, ErrInvalidBooking, next)
	}

	var out domain.Booking
	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		cur, err := s.deps.Repos.Bookings(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if !cur.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next)
		}

		out, err = s.deps.Repos.Bookings(tx).UpdateStatus(ctx, id, next)
		if err != nil {
			return err
		}

		booking := out
		after(func(ctx context.Context) {
			s.changed(ctx, booking)
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) changed(ctx context.Context, b domain.Booking) {
	if err := s.deps.Cache.InvalidateSchedule(ctx, b.ServiceID); err != nil {
		s.logger.Warn("invalidate schedule", slog.String("service_id", b.ServiceID), slog.Any("error", err))
	}

	if err := s.deps.Notifier.PublishBookingsChanged(ctx, b.CustomerID, b.ID, b.TempID); err != nil {
		s.logger.Warn("publish bookings changed", slog.String("customer_id", b.CustomerID), slog.Any("error", err))
	}
}
