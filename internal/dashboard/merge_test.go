package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

var now = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func booking(id, serviceID, customerID string, status domain.BookingStatus, age time.Duration) domain.Booking {
	return domain.Booking{
		ID:         id,
		ServiceID:  serviceID,
		CustomerID: customerID,
		Status:     status,
		CreatedAt:  now.Add(-age),
	}
}

func optimistic(tempID, serviceID, customerID string, age time.Duration) domain.Booking {
	b := booking(tempID, serviceID, customerID, domain.BookingPending, age)
	b.TempID = tempID
	b.IsOptimistic = true
	return b
}

func ids(bookings []domain.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func assertMergeInvariants(t *testing.T, merged []domain.Booking) {
	t.Helper()

	seenIDs := map[string]bool{}
	seenPairs := map[pairKey]bool{}
	for _, b := range merged {
		require.False(t, seenIDs[b.ID], "duplicate id %q", b.ID)
		seenIDs[b.ID] = true

		if k, ok := activePair(b); ok {
			require.False(t, seenPairs[k], "duplicate active pair %+v", k)
			seenPairs[k] = true
		}
	}
}

func TestMergeBookings_BackendIsBase(t *testing.T) {
	backend := []domain.Booking{
		booking("b1", "S1", "C1", domain.BookingConfirmed, time.Hour),
		booking("b2", "S2", "C1", domain.BookingPending, time.Hour),
	}

	merged := MergeBookings(nil, backend, now, DefaultOptimisticWindow)

	assert.Equal(t, []string{"b1", "b2"}, ids(merged))
}

func TestMergeBookings_FreshOptimisticSurvivesAndIsPrepended(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S9", "C1", 2*time.Minute)}
	backend := []domain.Booking{booking("b1", "S1", "C1", domain.BookingConfirmed, time.Hour)}

	merged := MergeBookings(prev, backend, now, DefaultOptimisticWindow)

	require.Equal(t, []string{"tmp-1", "b1"}, ids(merged))
	assert.True(t, merged[0].IsOptimistic)
}

func TestMergeBookings_StaleOptimisticDropped(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S9", "C1", 6*time.Minute)}

	merged := MergeBookings(prev, nil, now, DefaultOptimisticWindow)

	assert.Empty(t, merged)
}

func TestMergeBookings_WindowIsInjectable(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S9", "C1", 6*time.Minute)}

	merged := MergeBookings(prev, nil, now, 10*time.Minute)

	assert.Equal(t, []string{"tmp-1"}, ids(merged))
}

func TestMergeBookings_ZeroCreatedAtIsStale(t *testing.T) {
	prev := []domain.Booking{{ID: "tmp-1", ServiceID: "S1", CustomerID: "C1", Status: domain.BookingPending}}

	merged := MergeBookings(prev, nil, now, DefaultOptimisticWindow)

	assert.Empty(t, merged)
}

func TestMergeBookings_ServerCopySupersedesOptimistic(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S1", "C1", time.Minute)}
	backend := []domain.Booking{booking("real-1", "S1", "C1", domain.BookingPending, 0)}

	merged := MergeBookings(prev, backend, now, DefaultOptimisticWindow)

	require.Equal(t, []string{"real-1"}, ids(merged))
	assert.False(t, merged[0].IsOptimistic)
}

func TestMergeBookings_InactiveServerRecordDoesNotSupersede(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S3", "C1", time.Minute)}
	backend := []domain.Booking{booking("old", "S3", "C1", domain.BookingCompleted, 48*time.Hour)}

	merged := MergeBookings(prev, backend, now, DefaultOptimisticWindow)

	assert.Equal(t, []string{"tmp-1", "old"}, ids(merged))
}

func TestMergeBookings_ShallowMergeKeepsLocalFields(t *testing.T) {
	local := booking("b1", "S1", "C1", domain.BookingPending, time.Hour)
	local.Requirements = "vegan menu"
	local.Location = "Hall A"
	local.TempID = "tmp-1"
	local.IsOptimistic = true

	remote := domain.Booking{ID: "b1", Status: domain.BookingConfirmed, Location: "Hall B"}

	merged := MergeBookings([]domain.Booking{local}, []domain.Booking{remote}, now, DefaultOptimisticWindow)

	require.Len(t, merged, 1)
	got := merged[0]
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, "Hall B", got.Location)
	assert.Equal(t, "vegan menu", got.Requirements)
	assert.Equal(t, "S1", got.ServiceID)
	assert.Equal(t, "tmp-1", got.TempID)
	assert.False(t, got.IsOptimistic)
}

func TestMergeBookings_NoDuplicates(t *testing.T) {
	prev := []domain.Booking{
		optimistic("tmp-1", "S1", "C1", time.Minute),
		optimistic("tmp-2", "S1", "C1", time.Minute),
		optimistic("tmp-1", "S1", "C1", time.Minute),
		booking("b2", "S2", "C1", domain.BookingConfirmed, time.Minute),
	}
	backend := []domain.Booking{
		booking("b2", "S2", "C1", domain.BookingConfirmed, time.Hour),
		booking("b2", "S2", "C1", domain.BookingConfirmed, time.Hour),
		booking("b3", "S4", "C1", domain.BookingPending, time.Hour),
		booking("b4", "S4", "C1", domain.BookingConfirmed, time.Hour),
	}

	merged := MergeBookings(prev, backend, now, DefaultOptimisticWindow)

	assertMergeInvariants(t, merged)
	assert.Equal(t, []string{"tmp-1", "b2", "b3"}, ids(merged))
}

func TestMergeBookings_FetchFailureKeepsPrev(t *testing.T) {
	prev := []domain.Booking{optimistic("tmp-1", "S1", "C1", 2*time.Minute)}
	r := NewReducer(Merger{Window: DefaultOptimisticWindow, Now: func() time.Time { return now }})

	s := r.Reduce(State{Bookings: prev}, FetchFailed{Resource: "bookings", Err: "timeout", At: now})

	require.Len(t, s.Bookings, 1)
	assert.Equal(t, domain.BookingPending, s.Bookings[0].Status)
	assert.Equal(t, "S1", s.Bookings[0].ServiceID)
}

func TestMergeBookings_Idempotent(t *testing.T) {
	local := booking("b1", "S1", "C1", domain.BookingPending, time.Hour)
	local.Requirements = "dj"

	prev := []domain.Booking{
		optimistic("tmp-1", "S5", "C1", time.Minute),
		optimistic("tmp-2", "S2", "C1", time.Minute),
		local,
		optimistic("tmp-3", "S6", "C1", time.Hour),
	}
	backend := []domain.Booking{
		{ID: "b1", Status: domain.BookingConfirmed},
		booking("b2", "S2", "C1", domain.BookingPending, 0),
		booking("b7", "S7", "C1", domain.BookingCancelled, time.Hour),
	}

	once := MergeBookings(prev, backend, now, DefaultOptimisticWindow)
	twice := MergeBookings(once, backend, now, DefaultOptimisticWindow)

	assert.Equal(t, once, twice)
	assertMergeInvariants(t, once)
}

func TestMerger_UsesClock(t *testing.T) {
	m := NewMerger(0)
	m.Now = func() time.Time { return now }

	merged := m.Merge([]domain.Booking{optimistic("tmp-1", "S1", "C1", 4*time.Minute)}, nil)

	assert.Equal(t, DefaultOptimisticWindow, m.Window)
	assert.Len(t, merged, 1)
}
