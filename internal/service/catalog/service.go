package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/repository"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventmarket/internal/repository/redis"
)

type Config struct {
	ServicesTTL  time.Duration
	ProvidersTTL time.Duration
	ScheduleTTL  time.Duration
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ServicesTTL <= 0 {
		cfg.ServicesTTL = 60 * time.Second
	}

	if cfg.ProvidersTTL <= 0 {
		cfg.ProvidersTTL = 60 * time.Second
	}

	if cfg.ScheduleTTL <= 0 {
		cfg.ScheduleTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// ListServices returns the active catalog.
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	const op = "service.catalog.ListServices"

	services, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyServices(),
		s.cfg.ServicesTTL,
		func(ctx context.Context) ([]domain.Service, error) {
			return s.store.Catalog().ListServices(ctx, true)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return services, nil
}

// GetService retrieves a service by its ID, active or not.
//
// Returns:
//   - domain.Service: the service.
//   - error: catalog.ErrServiceNotFound if there is no such service.
func (s *Service) GetService(ctx context.Context, id string) (domain.Service, error) {
	const op = "service.catalog.GetService"

	svc, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyService(id),
		s.cfg.ServicesTTL,
		func(ctx context.Context) (domain.Service, error) {
			svc, err := s.store.Catalog().GetService(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Service{}, ErrServiceNotFound
			}
			return svc, err
		},
	)
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s: %w", op, err)
	}

	return svc, nil
}

func (s *Service) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	const op = "service.catalog.ListProviders"

	providers, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyProviders(),
		s.cfg.ProvidersTTL,
		func(ctx context.Context) ([]domain.Provider, error) {
			return s.store.Catalog().ListProviders(ctx)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return providers, nil
}

// Schedule returns the occupied slots of a service. Entries carry no
// customer identity so the list is safe to show to anyone.
func (s *Service) Schedule(ctx context.Context, serviceID string) ([]domain.ScheduleEntry, error) {
	const op = "service.catalog.Schedule"

	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedule, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeySchedule(serviceID),
		s.cfg.ScheduleTTL,
		func(ctx context.Context) ([]domain.ScheduleEntry, error) {
			return s.store.Bookings().Schedule(ctx, serviceID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return schedule, nil
}
