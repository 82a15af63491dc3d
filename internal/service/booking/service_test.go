package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/repository"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	"github.com/kirinyoku/eventmarket/internal/uow"
)

func validDraft() domain.BookingDraft {
	return domain.BookingDraft{
		TempID:     "tmp-1",
		CustomerID: "c1",
		ServiceID:  "s1",
		EventDate:  "2030-06-01",
		EventTime:  "18:00",
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *domain.BookingDraft)
		ok     bool
	}{
		{name: "valid", mutate: func(*domain.BookingDraft) {}, ok: true},
		{name: "whole day", mutate: func(d *domain.BookingDraft) { d.EventTime = "" }, ok: true},
		{name: "timestamp date", mutate: func(d *domain.BookingDraft) { d.EventDate = "2030-06-01T00:00:00Z" }, ok: true},
		{name: "seconds in clock", mutate: func(d *domain.BookingDraft) { d.EventTime = "18:00:00" }, ok: true},
		{name: "no customer", mutate: func(d *domain.BookingDraft) { d.CustomerID = " " }},
		{name: "no service", mutate: func(d *domain.BookingDraft) { d.ServiceID = "" }},
		{name: "bad date", mutate: func(d *domain.BookingDraft) { d.EventDate = "01/06/2030" }},
		{name: "bad clock", mutate: func(d *domain.BookingDraft) { d.EventTime = "25:99" }},
		{name: "negative budget", mutate: func(d *domain.BookingDraft) { d.Budget = -1 }},
		{name: "negative guests", mutate: func(d *domain.BookingDraft) { d.GuestCount = -3 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)

			err := Validate(d)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBooking)
		})
	}
}

func TestIsRejection(t *testing.T) {
	for _, err := range []error{
		ErrInvalidBooking,
		ErrServiceNotFound,
		ErrServiceUnavailable,
		ErrSlotTaken,
		fmt.Errorf("service.booking.Create: %w", ErrAlreadyBooked),
	} {
		assert.True(t, IsRejection(err), err.Error())
	}

	assert.False(t, IsRejection(errors.New("connection refused")))
	assert.False(t, IsRejection(ErrBookingNotFound))
	assert.False(t, IsRejection(nil))
}

type fakeTx struct {
	commits int
}

func (f *fakeTx) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error,
) error {
	var hooks []uow.AfterCommit
	if err := fn(ctx, nil, func(h uow.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}
	f.commits++
	for _, h := range hooks {
		h(ctx)
	}
	return nil
}

// memBookings enforces the same uniqueness rules as the bookings table.
type memBookings struct {
	list     []domain.Booking
	services map[string]domain.Service
	// uncommitted is a row inserted by a concurrent transaction. Reads miss
	// it until an insert collides with it.
	uncommitted string
}

func (m *memBookings) visible(b domain.Booking) bool {
	return m.uncommitted == "" || b.ID != m.uncommitted
}

func (m *memBookings) Bookings(postgresrepo.DB) BookingStore { return m }
func (m *memBookings) Services(postgresrepo.DB) ServiceStore { return m }

func (m *memBookings) GetService(_ context.Context, id string) (domain.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return domain.Service{}, repository.ErrNotFound
	}
	return svc, nil
}

func (m *memBookings) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	for _, cur := range m.list {
		if b.TempID != "" && cur.CustomerID == b.CustomerID && cur.TempID == b.TempID {
			m.uncommitted = ""
			return domain.Booking{}, repository.ErrDuplicateRef
		}
		if cur.CustomerID == b.CustomerID && cur.ServiceID == b.ServiceID && cur.Active() {
			return domain.Booking{}, repository.ErrAlreadyBooked
		}
	}
	m.list = append(m.list, b)
	return b, nil
}

func (m *memBookings) Get(_ context.Context, id string) (domain.Booking, error) {
	for _, b := range m.list {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Booking{}, repository.ErrNotFound
}

func (m *memBookings) GetForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	return m.Get(ctx, id)
}

func (m *memBookings) GetByClientRef(_ context.Context, customerID, ref string) (domain.Booking, error) {
	for _, b := range m.list {
		if b.CustomerID == customerID && b.TempID == ref && m.visible(b) {
			return b, nil
		}
	}
	return domain.Booking{}, repository.ErrNotFound
}

func (m *memBookings) ListForCustomer(_ context.Context, customerID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.list {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	for i, b := range m.list {
		if b.ID == id {
			m.list[i].Status = status
			return m.list[i], nil
		}
	}
	return domain.Booking{}, repository.ErrNotFound
}

func (m *memBookings) Schedule(_ context.Context, serviceID string) ([]domain.ScheduleEntry, error) {
	var out []domain.ScheduleEntry
	for _, b := range m.list {
		if b.ServiceID == serviceID && b.Active() && m.visible(b) {
			out = append(out, domain.ScheduleEntry{
				ServiceID: b.ServiceID,
				EventDate: b.EventDate,
				EventTime: b.EventTime,
				Status:    b.Status,
			})
		}
	}
	return out, nil
}

type fakeCache struct {
	invalidated []string
}

func (c *fakeCache) InvalidateSchedule(_ context.Context, serviceID string) error {
	c.invalidated = append(c.invalidated, serviceID)
	return nil
}

type fakeNotifier struct {
	published []string
}

func (n *fakeNotifier) PublishBookingsChanged(_ context.Context, customerID, _, tempID string) error {
	n.published = append(n.published, customerID+"/"+tempID)
	return nil
}

type fixture struct {
	svc      *Service
	store    *memBookings
	tx       *fakeTx
	cache    *fakeCache
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: &memBookings{services: map[string]domain.Service{
			"s1": {ID: "s1", ProviderID: "p1", Name: "DJ Set", Category: "Music", IsActive: true},
			"s2": {ID: "s2", ProviderID: "p2", Name: "Old Stage", Category: "Stage", IsActive: false},
		}},
		tx:       &fakeTx{},
		cache:    &fakeCache{},
		notifier: &fakeNotifier{},
	}

	f.svc = New(Deps{
		Repos:    f.store,
		Tx:       f.tx,
		Cache:    f.cache,
		Notifier: f.notifier,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return f
}

func TestCreate_StoresPendingBooking(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), validDraft())

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, "tmp-1", b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, "p1", b.ProviderID)
	assert.Equal(t, "DJ Set", b.ServiceName)
	assert.Equal(t, "Music", b.ServiceCategory)
	assert.Equal(t, "tmp-1", b.TempID)
	assert.Equal(t, []string{"s1"}, f.cache.invalidated)
	assert.Equal(t, []string{"c1/tmp-1"}, f.notifier.published)
}

func TestCreate_SameDraftTwiceReturnsFirst(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	again, err := f.svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.store.list, 1)
	assert.Equal(t, 1, f.tx.commits)
}

func TestCreate_TempIDScopedByCustomer(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	other := validDraft()
	other.CustomerID = "c2"
	other.EventTime = "20:00"
	second, err := f.svc.Create(context.Background(), other)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "c2", second.CustomerID)
	require.Len(t, f.store.list, 2)
}

func TestCreate_ConcurrentDuplicateReturnsStored(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	f.store.uncommitted = first.ID
	again, err := f.svc.Create(context.Background(), validDraft())

	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.store.list, 1)
}

func TestCreate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *domain.BookingDraft)
		seed   []domain.Booking
		want   error
	}{
		{name: "unknown service", mutate: func(d *domain.BookingDraft) { d.ServiceID = "nope" }, want: ErrServiceNotFound},
		{name: "inactive service", mutate: func(d *domain.BookingDraft) { d.ServiceID = "s2" }, want: ErrServiceUnavailable},
		{name: "invalid", mutate: func(d *domain.BookingDraft) { d.EventDate = "soon" }, want: ErrInvalidBooking},
		{
			name:   "slot taken",
			mutate: func(*domain.BookingDraft) {},
			seed:   []domain.Booking{{ID: "b0", CustomerID: "c9", ServiceID: "s1", EventDate: "2030-06-01", EventTime: "18:00", Status: domain.BookingConfirmed}},
			want:   ErrSlotTaken,
		},
		{
			name:   "already booked",
			mutate: func(d *domain.BookingDraft) { d.TempID = "tmp-2" },
			seed:   []domain.Booking{{ID: "b0", CustomerID: "c1", ServiceID: "s1", EventDate: "2030-07-01", EventTime: "10:00", Status: domain.BookingPending}},
			want:   ErrAlreadyBooked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.list = append(f.store.list, tc.seed...)

			d := validDraft()
			tc.mutate(&d)
			_, err := f.svc.Create(context.Background(), d)

			require.ErrorIs(t, err, tc.want)
			assert.True(t, IsRejection(err))
			assert.Len(t, f.store.list, len(tc.seed))
			assert.Empty(t, f.notifier.published)
		})
	}
}

func TestCreate_CancelledSlotIsFree(t *testing.T) {
	f := newFixture(t)
	f.store.list = []domain.Booking{{ID: "b0", CustomerID: "c9", ServiceID: "s1", EventDate: "2030-06-01", EventTime: "18:00", Status: domain.BookingCancelled}}

	_, err := f.svc.Create(context.Background(), validDraft())

	assert.NoError(t, err)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	f.store.list = []domain.Booking{{ID: "b1", CustomerID: "c1", ServiceID: "s1", Status: domain.BookingPending}}

	b, err := f.svc.UpdateStatus(context.Background(), "b1", domain.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, []string{"s1"}, f.cache.invalidated)

	_, err = f.svc.UpdateStatus(context.Background(), "b1", domain.BookingPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(context.Background(), "missing", domain.BookingConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.UpdateStatus(context.Background(), "b1", domain.BookingStatus("lost"))
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrBookingNotFound)
}
