package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

const serviceColumns = `id, provider_id, name, description, category, price, duration, is_active, created_at`

type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanService(row pgx.Row) (domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.Category,
		&s.Price, &s.Duration, &s.IsActive, &s.CreatedAt,
	)
	return s, err
}

func (r *CatalogRepo) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	const op = "postgres.CatalogRepo.CreateProvider"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO providers (id, name, role, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		p.ID, p.Name, p.Role, p.Email,
	).Scan(&p.CreatedAt)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	p.Services = []domain.Service{}

	return p, nil
}

// CreateService adds a service to a provider's offering.
//
// Returns:
//   - domain.Service: the stored service.
//   - error: repository.ErrInvalidForeign if the provider does not exist.
func (r *CatalogRepo) CreateService(ctx context.Context, s domain.Service) (domain.Service, error) {
	const op = "postgres.CatalogRepo.CreateService"

	out, err := scanService(r.handle().QueryRow(ctx,
		`INSERT INTO services (id, provider_id, name, description, category, price, duration, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+serviceColumns,
		s.ID, s.ProviderID, s.Name, s.Description, s.Category, s.Price, s.Duration, s.IsActive,
	))
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *CatalogRepo) GetService(ctx context.Context, id string) (domain.Service, error) {
	const op = "postgres.CatalogRepo.GetService"

	s, err := scanService(r.handle().QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return s, nil
}

// ListServices returns services ordered by category and name. With
// activeOnly set, deactivated services are left out.
func (r *CatalogRepo) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	const op = "postgres.CatalogRepo.ListServices"

	rows, err := r.handle().Query(ctx,
		`SELECT `+serviceColumns+`
		 FROM services
		 WHERE is_active OR NOT $1
		 ORDER BY category, name, id`,
		activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := []domain.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// ListProviders returns every provider with its active services embedded.
func (r *CatalogRepo) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	const op = "postgres.CatalogRepo.ListProviders"

	rows, err := r.handle().Query(ctx,
		`SELECT id, name, role, email, created_at FROM providers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := []domain.Provider{}
	index := map[string]int{}
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		p.Services = []domain.Service{}
		index[p.ID] = len(out)
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	services, err := r.ListServices(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	for _, s := range services {
		if i, ok := index[s.ProviderID]; ok {
			out[i].Services = append(out[i].Services, s)
		}
	}

	return out, nil
}

func (r *CatalogRepo) SetServiceActive(ctx context.Context, id string, active bool) (domain.Service, error) {
	const op = "postgres.CatalogRepo.SetServiceActive"

	s, err := scanService(r.handle().QueryRow(ctx,
		`UPDATE services SET is_active = $2 WHERE id = $1 RETURNING `+serviceColumns,
		id, active,
	))
	if err != nil {
		return domain.Service{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return s, nil
}
