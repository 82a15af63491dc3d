package bidrequest

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

// Validate checks a new bid request before it is stored.
func Validate(br domain.BidRequest) error {
	switch {
	case strings.TrimSpace(br.CustomerID) == "":
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	case strings.TrimSpace(br.EventName) == "":
		return fmt.Errorf("%w: eventName is required", ErrInvalidInput)
	case br.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	case br.GuestCount < 0:
		return fmt.Errorf("%w: guestCount must not be negative", ErrInvalidInput)
	}

	if _, err := time.Parse(domain.DateLayout, dashboard.NormalizeDate(br.EventDate)); err != nil {
		return fmt.Errorf("%w: eventDate must be YYYY-MM-DD", ErrInvalidInput)
	}

	return nil
}

// Create opens a bid request on behalf of a customer.
func (s *Service) Create(ctx context.Context, br domain.BidRequest) (domain.BidRequest, error) {
	const op = "service.bidrequest.Create"

	if err := Validate(br); err != nil {
		return domain.BidRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	br.ID = uuid.NewString()
	br.Status = domain.BidRequestOpen
	br.EventDate = dashboard.NormalizeDate(br.EventDate)

	var out domain.BidRequest
	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		out, err = s.deps.Repos.BidRequests(tx).Create(ctx, br)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidForeign) {
				return ErrServiceNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			s.changed(ctx, out.CustomerID, out.ID)
		})

		return nil
	})
	if err != nil {
		return domain.BidRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.BidRequest, error) {
	const op = "service.bidrequest.ListForCustomer"

	out, err := s.deps.Repos.BidRequests(nil).ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Delete removes a customer's own request while it is still open. Its bids
// go with it.
//
// Returns:
//   - error: bidrequest.ErrBidRequestNotFound if there is no such request.
//   - error: bidrequest.ErrNotOwner if the request belongs to someone else.
//   - error: bidrequest.ErrNotOpen if a bid was already accepted.
func (s *Service) Delete(ctx context.Context, customerID, requestID string) error {
	const op = "service.bidrequest.Delete"

	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		br, err := s.owned(ctx, tx, customerID, requestID)
		if err != nil {
			return err
		}

		if br.Status != domain.BidRequestOpen {
			return ErrNotOpen
		}

		if err := s.deps.Repos.BidRequests(tx).Delete(ctx, requestID); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.changed(ctx, customerID, requestID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SubmitBid records a provider's offer on an open request. A provider bids
// at most once per request.
//
// Returns:
//   - domain.Bid: the stored bid, status pending.
//   - error: bidrequest.ErrNotOpen if the request is no longer open.
//   - error: bidrequest.ErrAlreadyBid if the provider already bid.
//   - error: bidrequest.ErrProviderNotFound if the provider is unknown.
func (s *Service) SubmitBid(ctx context.Context, requestID string, bid domain.Bid) (domain.Bid, error) {
	const op = "service.bidrequest.SubmitBid"

	if strings.TrimSpace(bid.ProviderID) == "" {
		return domain.Bid{}, fmt.Errorf("%s: %w: providerId is required", op, ErrInvalidInput)
	}
	if bid.Price <= 0 {
		return domain.Bid{}, fmt.Errorf("%s: %w: price must be positive", op, ErrInvalidInput)
	}

	bid.ID = uuid.NewString()
	bid.Status = domain.BidPending

	var out domain.Bid
	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		br, err := s.deps.Repos.BidRequests(tx).GetForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBidRequestNotFound
			}
			return err
		}

		if br.Status != domain.BidRequestOpen {
			return ErrNotOpen
		}

		out, err = s.deps.Repos.BidRequests(tx).CreateBid(ctx, requestID, bid)
		switch {
		case errors.Is(err, repository.ErrDuplicateBid):
			return ErrAlreadyBid
		case errors.Is(err, repository.ErrInvalidForeign):
			return ErrProviderNotFound
		case err != nil:
			return err
		}

		after(func(ctx context.Context) {
			s.changed(ctx, br.CustomerID, br.ID)
		})

		return nil
	})
	if err != nil {
		return domain.Bid{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// AcceptBid awards the request to one bid. All other pending bids are
// rejected and a pending booking is created for the winning provider at
// the bid price.
//
// Returns:
//   - domain.Booking: the booking created for the award.
//   - error: bidrequest.ErrNotOpen if the request was already awarded or
//     closed.
//   - error: bidrequest.ErrBidNotFound / ErrBidNotPending for a bad bid.
func (s *Service) AcceptBid(ctx context.Context, customerID, requestID, bidID string) (domain.Booking, error) {
	const op = "service.bidrequest.AcceptBid"

	var out domain.Booking
	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		br, err := s.owned(ctx, tx, customerID, requestID)
		if err != nil {
			return err
		}

		if br.Status != domain.BidRequestOpen {
			return ErrNotOpen
		}

		bid, err := pendingBid(br, bidID)
		if err != nil {
			return err
		}

		repo := s.deps.Repos.BidRequests(tx)
		if err := repo.SetBidStatus(ctx, bid.ID, domain.BidAccepted); err != nil {
			return err
		}
		if err := repo.RejectOtherBids(ctx, br.ID, bid.ID); err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, br.ID, domain.BidRequestAwarded); err != nil {
			return err
		}

		b, err := s.awardBooking(ctx, tx, br, bid)
		if err != nil {
			return err
		}

		out, err = s.deps.Repos.Bookings(tx).Create(ctx, b)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyBooked) {
				return ErrAlreadyBooked
			}
			return err
		}

		booking := out
		after(func(ctx context.Context) {
			if booking.ServiceID != "" {
				if err := s.deps.Cache.InvalidateSchedule(ctx, booking.ServiceID); err != nil {
					s.logger.Warn("invalidate schedule", slog.String("service_id", booking.ServiceID), slog.Any("error", err))
				}
			}
			if err := s.deps.Notifier.PublishBookingsChanged(ctx, customerID, booking.ID, ""); err != nil {
				s.logger.Warn("publish bookings changed", slog.String("customer_id", customerID), slog.Any("error", err))
			}
			s.changed(ctx, customerID, requestID)
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("bid accepted",
		slog.String("request_id", requestID),
		slog.String("bid_id", bidID),
		slog.String("booking_id", out.ID),
	)

	return out, nil
}

// RejectBid declines one pending bid. The request stays open.
func (s *Service) RejectBid(ctx context.Context, customerID, requestID, bidID string) error {
	const op = "service.bidrequest.RejectBid"

	err := s.deps.Tx.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		br, err := s.owned(ctx, tx, customerID, requestID)
		if err != nil {
			return err
		}

		if br.Status != domain.BidRequestOpen {
			return ErrNotOpen
		}

		bid, err := pendingBid(br, bidID)
		if err != nil {
			return err
		}

		if err := s.deps.Repos.BidRequests(tx).SetBidStatus(ctx, bid.ID, domain.BidRejected); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.changed(ctx, customerID, requestID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) owned(ctx context.Context, tx postgresrepo.DB, customerID, requestID string) (domain.BidRequest, error) {
	br, err := s.deps.Repos.BidRequests(tx).GetForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.BidRequest{}, ErrBidRequestNotFound
		}
		return domain.BidRequest{}, err
	}

	if br.CustomerID != customerID {
		return domain.BidRequest{}, ErrNotOwner
	}

	return br, nil
}

func pendingBid(br domain.BidRequest, bidID string) (domain.Bid, error) {
	for _, b := range br.Bids {
		if b.ID != bidID {
			continue
		}
		if b.Status != domain.BidPending {
			return domain.Bid{}, ErrBidNotPending
		}
		return b, nil
	}

	return domain.Bid{}, ErrBidNotFound
}

// awardBooking builds the booking that results from accepting bid. It
// carries the request's service when there is one, so the dashboard can
// match it by service id instead of by provider.
func (s *Service) awardBooking(
	ctx context.Context,
	tx postgresrepo.DB,
	br domain.BidRequest,
	bid domain.Bid,
) (domain.Booking, error) {
	b := domain.Booking{
		ID:           uuid.NewString(),
		ProviderID:   bid.ProviderID,
		CustomerID:   br.CustomerID,
		ServiceName:  br.EventName,
		EventDate:    br.EventDate,
		Location:     br.Location,
		Status:       domain.BookingPending,
		Budget:       bid.Price,
		GuestCount:   br.GuestCount,
		Requirements: br.Requirements,
	}

	if len(br.PreferredCategories) > 0 {
		b.ServiceCategory = br.PreferredCategories[0]
	}

	if br.ServiceID == "" {
		return b, nil
	}

	svc, err := s.deps.Repos.Services(tx).GetService(ctx, br.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, ErrServiceNotFound
		}
		return domain.Booking{}, err
	}

	b.ServiceID = svc.ID
	b.ServiceName = svc.Name
	b.ServiceCategory = svc.Category

	return b, nil
}

func (s *Service) changed(ctx context.Context, customerID, requestID string) {
	if err := s.deps.Notifier.PublishBidRequestsChanged(ctx, customerID, requestID); err != nil {
		s.logger.Warn("publish bid requests changed", slog.String("customer_id", customerID), slog.Any("error", err))
	}
}
