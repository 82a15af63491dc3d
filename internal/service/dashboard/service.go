// Package dashboard drives a customer's dashboard: it refreshes the state
// from the backend, resolves per-service availability and runs booking
// submissions optimistically through the queue.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	dashcore "github.com/kirinyoku/eventmarket/internal/dashboard"
	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/service/booking"
	"github.com/kirinyoku/eventmarket/internal/service/catalog"
)

const (
	enqueueFailedReason = "booking could not be submitted, please try again"
	unavailableReason   = "temporarily unavailable"
)

type BookingSource interface {
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
}

type BidRequestSource interface {
	ListForCustomer(ctx context.Context, customerID string) ([]domain.BidRequest, error)
}

type Catalog interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (domain.Service, error)
	Schedule(ctx context.Context, serviceID string) ([]domain.ScheduleEntry, error)
}

// StateStore persists dashboard state per customer. Update must apply fn
// atomically with respect to other updates of the same customer.
type StateStore interface {
	Load(ctx context.Context, customerID string) (dashcore.State, error)
	Update(ctx context.Context, customerID string, fn func(dashcore.State) dashcore.State) (dashcore.State, error)
}

type Guard interface {
	Acquire(ctx context.Context, customerID, serviceID, tempID string) (bool, error)
	Release(ctx context.Context, customerID, serviceID, tempID string) error
}

type Enqueuer interface {
	EnqueueBookingCreate(ctx context.Context, d domain.BookingDraft) error
}

type Notifier interface {
	PublishBookingsChanged(ctx context.Context, customerID, bookingID, tempID string) error
}

type Limiter interface {
	Allow(ctx context.Context, id string) (bool, int64, time.Duration, error)
}

type Config struct {
	OptimisticWindow time.Duration
}

type Deps struct {
	Bookings    BookingSource
	BidRequests BidRequestSource
	Catalog     Catalog
	States      StateStore
	Guard       Guard
	Queue       Enqueuer
	Notifier    Notifier
	Limiter     Limiter
}

type Service struct {
	deps    Deps
	reducer dashcore.Reducer
	logger  *slog.Logger
	now     func() time.Time
}

func New(deps Deps, cfg Config, logger *slog.Logger) *Service {
	if cfg.OptimisticWindow <= 0 {
		cfg.OptimisticWindow = dashcore.DefaultOptimisticWindow
	}

	s := &Service{
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}

	s.reducer = dashcore.NewReducer(dashcore.Merger{
		Window: cfg.OptimisticWindow,
		Now:    func() time.Time { return s.now() },
	})

	return s
}

// View is what the dashboard page renders.
type View struct {
	dashcore.State
	Services []dashcore.Availability `json:"services"`
}

// SubmitRequest is a customer's booking form. TempID may be supplied by the
// client to make resubmission safe; otherwise one is generated.
type SubmitRequest struct {
	TempID       string
	ServiceID    string
	EventDate    string
	EventTime    string
	Location     string
	Budget       float64
	GuestCount   int
	Requirements string
}

func (s *Service) apply(ctx context.Context, customerID string, actions ...dashcore.Action) (dashcore.State, error) {
	return s.deps.States.Update(ctx, customerID, func(st dashcore.State) dashcore.State {
		for _, a := range actions {
			st = s.reducer.Reduce(st, a)
		}
		return st
	})
}

// Refresh pulls the customer's bookings and bid requests and merges them
// into the stored state. A failed fetch keeps the previous data and sets a
// notice; it is not returned as an error.
func (s *Service) Refresh(ctx context.Context, customerID string) (dashcore.State, error) {
	const op = "service.dashboard.Refresh"

	var (
		bookings    []domain.Booking
		requests    []domain.BidRequest
		bookingsErr error
		requestsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		bookings, bookingsErr = s.deps.Bookings.ListForCustomer(ctx, customerID)
		return nil
	})
	g.Go(func() error {
		requests, requestsErr = s.deps.BidRequests.ListForCustomer(ctx, customerID)
		return nil
	})
	_ = g.Wait()

	now := s.now()
	actions := make([]dashcore.Action, 0, 2)

	if bookingsErr != nil {
		s.logger.Warn("refresh bookings", slog.String("customer_id", customerID), slog.Any("error", bookingsErr))
		actions = append(actions, dashcore.FetchFailed{Resource: "bookings", Err: unavailableReason, At: now})
	} else {
		actions = append(actions, dashcore.BookingsLoaded{Bookings: bookings, At: now})
	}

	if requestsErr != nil {
		s.logger.Warn("refresh bid requests", slog.String("customer_id", customerID), slog.Any("error", requestsErr))
		actions = append(actions, dashcore.FetchFailed{Resource: "bid requests", Err: unavailableReason, At: now})
	} else {
		actions = append(actions, dashcore.BidRequestsLoaded{BidRequests: requests, At: now})
	}

	st, err := s.apply(ctx, customerID, actions...)
	if err != nil {
		return dashcore.State{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

// View refreshes the customer's state and resolves the availability of
// every active catalog service for them.
func (s *Service) View(ctx context.Context, customerID string) (View, error) {
	const op = "service.dashboard.View"

	st, err := s.Refresh(ctx, customerID)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	services, err := s.deps.Catalog.ListServices(ctx)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	v := View{
		State:    st,
		Services: make([]dashcore.Availability, 0, len(services)),
	}
	for _, svc := range services {
		v.Services = append(v.Services, dashcore.Resolve(svc, st.Bookings, st.BidRequests, customerID))
	}

	return v, nil
}

func (s *Service) ServiceAvailability(ctx context.Context, customerID, serviceID string) (dashcore.Availability, error) {
	const op = "service.dashboard.ServiceAvailability"

	svc, err := s.service(ctx, serviceID)
	if err != nil {
		return dashcore.Availability{}, fmt.Errorf("%s: %w", op, err)
	}

	st, err := s.Refresh(ctx, customerID)
	if err != nil {
		return dashcore.Availability{}, fmt.Errorf("%s: %w", op, err)
	}

	return dashcore.Resolve(svc, st.Bookings, st.BidRequests, customerID), nil
}

// CheckSlot reports whether date and clock collide with the service's
// schedule. The answer is advisory.
func (s *Service) CheckSlot(ctx context.Context, serviceID, date, clock string) (bool, error) {
	const op = "service.dashboard.CheckSlot"

	schedule, err := s.deps.Catalog.Schedule(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrServiceNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return dashcore.HasConflict(schedule, date, clock), nil
}

// SubmitBooking accepts a booking form, shows it on the dashboard right away
// and queues its creation. The returned booking is the optimistic
// placeholder; the queue worker later confirms or rolls it back.
//
// Returns:
//   - domain.Booking: the optimistic booking, keyed by its temp id.
//   - error: booking.ErrInvalidBooking for a malformed form.
//   - error: dashboard.ErrRateLimited, ErrServiceNotFound,
//     ErrServiceUnavailable, ErrNotBookable, ErrSlotTaken or
//     ErrSubmissionInFlight when the submission is refused.
func (s *Service) SubmitBooking(ctx context.Context, customerID string, req SubmitRequest) (domain.Booking, error) {
	const op = "service.dashboard.SubmitBooking"

	d := domain.BookingDraft{
		TempID:       strings.TrimSpace(req.TempID),
		CustomerID:   customerID,
		ServiceID:    req.ServiceID,
		EventDate:    dashcore.NormalizeDate(req.EventDate),
		EventTime:    dashcore.NormalizeClock(req.EventTime),
		Location:     req.Location,
		Budget:       req.Budget,
		GuestCount:   req.GuestCount,
		Requirements: req.Requirements,
		SubmittedAt:  s.now(),
	}
	if d.TempID == "" {
		d.TempID = "tmp-" + uuid.NewString()
	}

	if err := booking.Validate(d); err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.deps.Limiter != nil {
		ok, _, retry, err := s.deps.Limiter.Allow(ctx, customerID)
		if err != nil {
			return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return domain.Booking{}, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	svc, err := s.service(ctx, d.ServiceID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	if !svc.IsActive {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrServiceUnavailable)
	}
	d.ProviderID = svc.ProviderID

	st, err := s.Refresh(ctx, customerID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	if existing, ok := byTempID(st.Bookings, d.TempID); ok {
		return existing, nil
	}

	if avail := dashcore.Resolve(svc, st.Bookings, st.BidRequests, customerID); !avail.CanBook {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, NotBookableError{State: avail.State})
	}

	schedule, err := s.deps.Catalog.Schedule(ctx, svc.ID)
	switch {
	case err != nil:
		s.logger.Warn("schedule pre-check skipped", slog.String("service_id", svc.ID), slog.Any("error", err))
	case dashcore.HasConflict(schedule, d.EventDate, d.EventTime):
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrSlotTaken)
	}

	acquired, err := s.deps.Guard.Acquire(ctx, customerID, svc.ID, d.TempID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	if !acquired {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrSubmissionInFlight)
	}

	optimistic := d.Optimistic(svc.Name, svc.Category)

	if _, err := s.apply(ctx, customerID, dashcore.BookingSubmitted{Booking: optimistic}); err != nil {
		s.release(ctx, d)
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.deps.Queue.EnqueueBookingCreate(ctx, d); err != nil {
		if _, rerr := s.apply(ctx, customerID, dashcore.SubmissionFailed{
			TempID: d.TempID,
			Reason: enqueueFailedReason,
			At:     s.now(),
		}); rerr != nil {
			s.logger.Error("roll back optimistic booking", slog.String("temp_id", d.TempID), slog.Any("error", rerr))
		}
		s.release(ctx, d)
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, customerID, "", d.TempID)

	s.logger.Info("booking submitted",
		slog.String("temp_id", d.TempID),
		slog.String("customer_id", customerID),
		slog.String("service_id", svc.ID),
	)

	return optimistic, nil
}

// ConfirmSubmission swaps the optimistic entry for the stored booking.
func (s *Service) ConfirmSubmission(ctx context.Context, d domain.BookingDraft, b domain.Booking) error {
	const op = "service.dashboard.ConfirmSubmission"

	if _, err := s.apply(ctx, d.CustomerID, dashcore.SubmissionConfirmed{TempID: d.TempID, Booking: b}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.release(ctx, d)
	s.notify(ctx, d.CustomerID, b.ID, d.TempID)

	return nil
}

// FailSubmission removes the optimistic entry and tells the customer why.
func (s *Service) FailSubmission(ctx context.Context, d domain.BookingDraft, reason string) error {
	const op = "service.dashboard.FailSubmission"

	if _, err := s.apply(ctx, d.CustomerID, dashcore.SubmissionFailed{
		TempID: d.TempID,
		Reason: reason,
		At:     s.now(),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.release(ctx, d)
	s.notify(ctx, d.CustomerID, "", d.TempID)

	return nil
}

func (s *Service) DismissNotice(ctx context.Context, customerID string) (dashcore.State, error) {
	const op = "service.dashboard.DismissNotice"

	st, err := s.apply(ctx, customerID, dashcore.NoticeDismissed{})
	if err != nil {
		return dashcore.State{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

func (s *Service) service(ctx context.Context, serviceID string) (domain.Service, error) {
	svc, err := s.deps.Catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return domain.Service{}, ErrServiceNotFound
		}
		return domain.Service{}, err
	}
	return svc, nil
}

func (s *Service) release(ctx context.Context, d domain.BookingDraft) {
	if err := s.deps.Guard.Release(ctx, d.CustomerID, d.ServiceID, d.TempID); err != nil {
		s.logger.Warn("release submission guard", slog.String("temp_id", d.TempID), slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, customerID, bookingID, tempID string) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.PublishBookingsChanged(ctx, customerID, bookingID, tempID); err != nil {
		s.logger.Warn("publish bookings changed", slog.String("customer_id", customerID), slog.Any("error", err))
	}
}

func byTempID(bookings []domain.Booking, tempID string) (domain.Booking, bool) {
	for _, b := range bookings {
		if b.TempID == tempID {
			return b, true
		}
	}
	return domain.Booking{}, false
}
