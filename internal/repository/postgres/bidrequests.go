package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/repository"
)

const bidRequestColumns = `id, customer_id, COALESCE(service_id, ''), event_name, event_type,
	to_char(event_date, 'YYYY-MM-DD'), location, budget, guest_count, requirements,
	services_needed, preferred_categories, status, created_at, updated_at`

const bidColumns = `b.id, b.request_id, b.provider_id, p.name, p.role, b.price, b.description,
	b.estimated_time, b.status, b.created_at`

type BidRequestRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BidRequestRepo) With(db DB) *BidRequestRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BidRequestRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanBidRequest(row pgx.Row) (domain.BidRequest, error) {
	var br domain.BidRequest
	err := row.Scan(
		&br.ID, &br.CustomerID, &br.ServiceID, &br.EventName, &br.EventType,
		&br.EventDate, &br.Location, &br.Budget, &br.GuestCount, &br.Requirements,
		&br.ServicesNeeded, &br.PreferredCategories, &br.Status, &br.CreatedAt, &br.UpdatedAt,
	)
	br.Bids = []domain.Bid{}
	return br, err
}

func scanBid(row pgx.Row) (domain.Bid, string, error) {
	var (
		b         domain.Bid
		requestID string
	)
	err := row.Scan(
		&b.ID, &requestID, &b.ProviderID, &b.ProviderName, &b.ProviderRole, &b.Price,
		&b.Description, &b.EstimatedTime, &b.Status, &b.CreatedAt,
	)
	return b, requestID, err
}

func (r *BidRequestRepo) Create(ctx context.Context, br domain.BidRequest) (domain.BidRequest, error) {
	const op = "postgres.BidRequestRepo.Create"

	if br.ServicesNeeded == nil {
		br.ServicesNeeded = []string{}
	}
	if br.PreferredCategories == nil {
		br.PreferredCategories = []string{}
	}

	out, err := scanBidRequest(r.handle().QueryRow(ctx,
		`INSERT INTO bid_requests (
			id, customer_id, service_id, event_name, event_type, event_date, location,
			budget, guest_count, requirements, services_needed, preferred_categories, status
		 ) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+bidRequestColumns,
		br.ID, br.CustomerID, br.ServiceID, br.EventName, br.EventType, br.EventDate, br.Location,
		br.Budget, br.GuestCount, br.Requirements, br.ServicesNeeded, br.PreferredCategories, br.Status,
	))
	if err != nil {
		return domain.BidRequest{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// GetForUpdate loads and locks a bid request together with its bids.
func (r *BidRequestRepo) GetForUpdate(ctx context.Context, id string) (domain.BidRequest, error) {
	const op = "postgres.BidRequestRepo.GetForUpdate"

	br, err := scanBidRequest(r.handle().QueryRow(ctx,
		`SELECT `+bidRequestColumns+` FROM bid_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.BidRequest{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	bids, err := r.bidsFor(ctx, []string{br.ID})
	if err != nil {
		return domain.BidRequest{}, fmt.Errorf("%s:%w", op, err)
	}
	br.Bids = append(br.Bids, bids[br.ID]...)

	return br, nil
}

// ListForCustomer returns the customer's bid requests, newest first, each
// with its bids in submission order.
func (r *BidRequestRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.BidRequest, error) {
	const op = "postgres.BidRequestRepo.ListForCustomer"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bidRequestColumns+`
		 FROM bid_requests
		 WHERE customer_id = $1
		 ORDER BY created_at DESC, id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := []domain.BidRequest{}
	ids := []string{}
	for rows.Next() {
		br, err := scanBidRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, br)
		ids = append(ids, br.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if len(ids) == 0 {
		return out, nil
	}

	bids, err := r.bidsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	for i := range out {
		out[i].Bids = append(out[i].Bids, bids[out[i].ID]...)
	}

	return out, nil
}

func (r *BidRequestRepo) bidsFor(ctx context.Context, requestIDs []string) (map[string][]domain.Bid, error) {
	rows, err := r.handle().Query(ctx,
		`SELECT `+bidColumns+`
		 FROM bids b
		 JOIN providers p ON p.id = b.provider_id
		 WHERE b.request_id = ANY($1)
		 ORDER BY b.created_at, b.id`,
		requestIDs,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	out := make(map[string][]domain.Bid, len(requestIDs))
	for rows.Next() {
		b, requestID, err := scanBid(rows)
		if err != nil {
			return nil, translateDBErr(err)
		}
		out[requestID] = append(out[requestID], b)
	}

	return out, translateDBErr(rows.Err())
}

func (r *BidRequestRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.BidRequestRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM bid_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *BidRequestRepo) SetStatus(ctx context.Context, id string, status domain.BidRequestStatus) error {
	const op = "postgres.BidRequestRepo.SetStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bid_requests SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// CreateBid stores a provider's offer on a request.
//
// Returns:
//   - domain.Bid: the stored bid with provider details.
//   - error: repository.ErrDuplicateBid if the provider already bid.
//   - error: repository.ErrInvalidForeign if the provider does not exist.
func (r *BidRequestRepo) CreateBid(ctx context.Context, requestID string, b domain.Bid) (domain.Bid, error) {
	const op = "postgres.BidRequestRepo.CreateBid"

	out, _, err := scanBid(r.handle().QueryRow(ctx,
		`WITH ins AS (
			INSERT INTO bids (id, request_id, provider_id, price, description, estimated_time, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		 )
		 SELECT `+bidColumns+`
		 FROM ins b
		 JOIN providers p ON p.id = b.provider_id`,
		b.ID, requestID, b.ProviderID, b.Price, b.Description, b.EstimatedTime, b.Status,
	))
	if err != nil {
		return domain.Bid{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *BidRequestRepo) SetBidStatus(ctx context.Context, bidID string, status domain.BidStatus) error {
	const op = "postgres.BidRequestRepo.SetBidStatus"

	tag, err := r.handle().Exec(ctx, `UPDATE bids SET status = $2 WHERE id = $1`, bidID, status)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// RejectOtherBids marks every pending bid of the request except keepID as
// rejected.
func (r *BidRequestRepo) RejectOtherBids(ctx context.Context, requestID, keepID string) error {
	const op = "postgres.BidRequestRepo.RejectOtherBids"

	_, err := r.handle().Exec(ctx,
		`UPDATE bids SET status = 'rejected'
		 WHERE request_id = $1 AND id <> $2 AND status = 'pending'`,
		requestID, keepID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
