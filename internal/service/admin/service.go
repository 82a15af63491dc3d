package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/repository"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventmarket/internal/repository/redis"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		uow:   uow.NewUoW(store),
	}
}

// CreateProvider registers a provider. An empty ID is generated.
//
// Returns:
//   - domain.Provider: the created provider.
//   - error: admin.ErrProviderConflict if the ID is already taken.
func (s *Service) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	const op = "service.admin.CreateProvider"

	if strings.TrimSpace(p.Name) == "" {
		return domain.Provider{}, fmt.Errorf("%s: %w: name is required", op, ErrInvalidInput)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var out domain.Provider
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		out, err = s.store.Catalog().With(tx).CreateProvider(ctx, p)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrProviderConflict
			}
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx)
		})

		return nil
	})
	if err != nil {
		return domain.Provider{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CreateService adds a service to an existing provider. New services are
// active unless the caller says otherwise.
//
// Returns:
//   - domain.Service: the created service.
//   - error: admin.ErrProviderNotFound if the provider does not exist.
//   - error: admin.ErrServiceConflict if the ID is already taken.
func (s *Service) CreateService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	const op = "service.admin.CreateService"

	if strings.TrimSpace(svc.Name) == "" || svc.ProviderID == "" {
		return domain.Service{}, fmt.Errorf("%s: %w: name and providerId are required", op, ErrInvalidInput)
	}

	if svc.Price < 0 {
		return domain.Service{}, fmt.Errorf("%s: %w: price must not be negative", op, ErrInvalidInput)
	}

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}

	var out domain.Service
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		out, err = s.store.Catalog().With(tx).CreateService(ctx, svc)
		switch {
		case errors.Is(err, repository.ErrInvalidForeign):
			return ErrProviderNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrServiceConflict
		case err != nil:
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, out.ID)
		})

		return nil
	})
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// SetServiceActive lists or delists a service. Existing bookings are not
// touched.
func (s *Service) SetServiceActive(ctx context.Context, id string, active bool) (domain.Service, error) {
	const op = "service.admin.SetServiceActive"

	var out domain.Service
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		out, err = s.store.Catalog().With(tx).SetServiceActive(ctx, id, active)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrServiceNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, id)
		})

		return nil
	})
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
