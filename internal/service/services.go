package service

import (
	"log/slog"

	postgres "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	redis "github.com/kirinyoku/eventmarket/internal/repository/redis"
	"github.com/kirinyoku/eventmarket/internal/service/admin"
	"github.com/kirinyoku/eventmarket/internal/service/bidrequest"
	"github.com/kirinyoku/eventmarket/internal/service/booking"
	"github.com/kirinyoku/eventmarket/internal/service/catalog"
	"github.com/kirinyoku/eventmarket/internal/service/dashboard"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

type Services struct {
	Catalog     *catalog.Service
	Admin       *admin.Service
	Bookings    *booking.Service
	BidRequests *bidrequest.Service
	Dashboard   *dashboard.Service
}

type Config struct {
	Catalog   catalog.Config
	Dashboard dashboard.Config
}

// Infra is the set of stores and adapters the services run on.
type Infra struct {
	Store    *postgres.Store
	Cache    *redis.Cache
	PubSub   *redis.CustomerPubSub
	Sessions *redis.SessionStore
	Guard    *redis.SubmissionGuard
	Limiter  *redis.SlidingWindowLimiter
	Queue    dashboard.Enqueuer
}

func NewServices(infra Infra, cfg Config, logger *slog.Logger) *Services {
	cat := catalog.New(infra.Store, infra.Cache, cfg.Catalog)
	tx := uow.NewUoW(infra.Store)
	bookings := booking.New(booking.Deps{
		Repos:    booking.PostgresRepos(infra.Store),
		Tx:       tx,
		Cache:    infra.Cache,
		Notifier: infra.PubSub,
	}, logger)
	bidRequests := bidrequest.New(bidrequest.Deps{
		Repos:    bidrequest.PostgresRepos(infra.Store),
		Tx:       tx,
		Cache:    infra.Cache,
		Notifier: infra.PubSub,
	}, logger)

	deps := dashboard.Deps{
		Bookings:    bookings,
		BidRequests: bidRequests,
		Catalog:     cat,
		States:      infra.Sessions,
		Guard:       infra.Guard,
		Queue:       infra.Queue,
		Notifier:    infra.PubSub,
	}
	if infra.Limiter != nil {
		deps.Limiter = infra.Limiter
	}

	return &Services{
		Catalog:     cat,
		Admin:       admin.New(infra.Store, infra.Cache),
		Bookings:    bookings,
		BidRequests: bidRequests,
		Dashboard:   dashboard.New(deps, cfg.Dashboard, logger),
	}
}
