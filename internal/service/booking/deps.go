package booking

import (
	"context"

	"github.com/kirinyoku/eventmarket/internal/domain"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

type BookingStore interface {
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)
	Get(ctx context.Context, id string) (domain.Booking, error)
	GetForUpdate(ctx context.Context, id string) (domain.Booking, error)
	GetByClientRef(ctx context.Context, customerID, ref string) (domain.Booking, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error)
	Schedule(ctx context.Context, serviceID string) ([]domain.ScheduleEntry, error)
}

type ServiceStore interface {
	GetService(ctx context.Context, id string) (domain.Service, error)
}

// Repos hands out repositories bound to db. A nil db runs outside any
// transaction.
type Repos interface {
	Bookings(db postgresrepo.DB) BookingStore
	Services(db postgresrepo.DB) ServiceStore
}

// Transactor runs fn in a transaction and calls the registered hooks once
// it commits.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error) error
}

type ScheduleCache interface {
	InvalidateSchedule(ctx context.Context, serviceID string) error
}

type Notifier interface {
	PublishBookingsChanged(ctx context.Context, customerID, bookingID, tempID string) error
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

func (r pgRepos) Bookings(db postgresrepo.DB) BookingStore {
	return r.store.Bookings().With(db)
}

func (r pgRepos) Services(db postgresrepo.DB) ServiceStore {
	return r.store.Catalog().With(db)
}
