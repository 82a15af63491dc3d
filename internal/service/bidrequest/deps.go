package bidrequest

import (
	"context"

	"github.com/kirinyoku/eventmarket/internal/domain"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

type RequestStore interface {
	Create(ctx context.Context, br domain.BidRequest) (domain.BidRequest, error)
	GetForUpdate(ctx context.Context, id string) (domain.BidRequest, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.BidRequest, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status domain.BidRequestStatus) error
	CreateBid(ctx context.Context, requestID string, b domain.Bid) (domain.Bid, error)
	SetBidStatus(ctx context.Context, bidID string, status domain.BidStatus) error
	RejectOtherBids(ctx context.Context, requestID, keepID string) error
}

type BookingStore interface {
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)
}

type ServiceStore interface {
	GetService(ctx context.Context, id string) (domain.Service, error)
}

// Repos hands out repositories bound to db. A nil db runs outside any
// transaction.
type Repos interface {
	BidRequests(db postgresrepo.DB) RequestStore
	Bookings(db postgresrepo.DB) BookingStore
	Services(db postgresrepo.DB) ServiceStore
}

type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error) error
}

type ScheduleCache interface {
	InvalidateSchedule(ctx context.Context, serviceID string) error
}

type Notifier interface {
	PublishBookingsChanged(ctx context.Context, customerID, bookingID, tempID string) error
	PublishBidRequestsChanged(ctx context.Context, customerID, requestID string) error
}

type Deps struct {
	Repos    Repos
	Tx       Transactor
	Cache    ScheduleCache
	Notifier Notifier
}

type pgRepos struct {
	store *postgresrepo.Store
}

// PostgresRepos serves Repos from the Postgres store.
func PostgresRepos(store *postgresrepo.Store) Repos {
	return pgRepos{store: store}
}

func (r pgRepos) BidRequests(db postgresrepo.DB) RequestStore {
	return r.store.BidRequests().With(db)
}

func (r pgRepos) Bookings(db postgresrepo.DB) BookingStore {
	return r.store.Bookings().With(db)
}

func (r pgRepos) Services(db postgresrepo.DB) ServiceStore {
	return r.store.Catalog().With(db)
}
