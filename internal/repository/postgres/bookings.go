package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

const bookingColumns = `id, COALESCE(client_ref, ''), COALESCE(service_id, ''), provider_id,
	customer_id, service_name, category, to_char(event_date, 'YYYY-MM-DD'), event_time,
	location, status, budget, guest_count, requirements, created_at, updated_at`

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.TempID, &b.ServiceID, &b.ProviderID,
		&b.CustomerID, &b.ServiceName, &b.ServiceCategory, &b.EventDate, &b.EventTime,
		&b.Location, &b.Status, &b.Budget, &b.GuestCount, &b.Requirements, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

// Create inserts a booking. b.TempID, when set, is stored as the client
// reference that makes creation idempotent.
//
// Returns:
//   - domain.Booking: the stored booking with server timestamps.
//   - error: repository.ErrDuplicateRef if the customer already used the
//     client reference.
//   - error: repository.ErrConflict if the id is taken.
//   - error: repository.ErrAlreadyBooked if the customer already holds an
//     active booking for the service.
func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const op = "postgres.BookingRepo.Create"

	out, err := scanBooking(r.handle().QueryRow(ctx,
		`INSERT INTO bookings (
			id, client_ref, service_id, provider_id, customer_id, service_name, category,
			event_date, event_time, location, status, budget, guest_count, requirements
		 ) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8::date, $9, $10, $11, $12, $13, $14)
		 RETURNING `+bookingColumns,
		b.ID, b.TempID, b.ServiceID, b.ProviderID, b.CustomerID, b.ServiceName, b.ServiceCategory,
		b.EventDate, b.EventTime, b.Location, b.Status, b.Budget, b.GuestCount, b.Requirements,
	))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// GetForUpdate locks the booking row until the surrounding transaction ends.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// GetByClientRef finds the booking a customer created for a dashboard
// submission. Client references are only unique per customer.
func (r *BookingRepo) GetByClientRef(ctx context.Context, customerID, ref string) (domain.Booking, error) {
	const op = "postgres.BookingRepo.GetByClientRef"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE customer_id = $1 AND client_ref = $2`,
		customerID, ref,
	))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// ListForCustomer returns the customer's bookings, newest first.
func (r *BookingRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListForCustomer"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE customer_id = $1
		 ORDER BY created_at DESC, id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	out, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.BookingStatus,
) (domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`UPDATE bookings
		 SET status = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+bookingColumns,
		id, status,
	))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// Schedule returns the active bookings of a service as calendar entries,
// ordered by date and time.
func (r *BookingRepo) Schedule(ctx context.Context, serviceID string) ([]domain.ScheduleEntry, error) {
	const op = "postgres.BookingRepo.Schedule"

	rows, err := r.handle().Query(ctx,
		`SELECT service_id, to_char(event_date, 'YYYY-MM-DD'), event_time, status
		 FROM bookings
		 WHERE service_id = $1
		   AND status IN ('pending', 'confirmed', 'in_progress')
		 ORDER BY event_date, event_time`,
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := []domain.ScheduleEntry{}
	for rows.Next() {
		var e domain.ScheduleEntry
		if err := rows.Scan(&e.ServiceID, &e.EventDate, &e.EventTime, &e.Status); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}
