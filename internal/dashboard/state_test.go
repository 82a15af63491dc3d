package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

func testReducer() Reducer {
	return NewReducer(Merger{Window: DefaultOptimisticWindow, Now: func() time.Time { return now }})
}

func TestReduce_SubmitPrependsOptimistic(t *testing.T) {
	r := testReducer()
	s := State{Bookings: []domain.Booking{booking("b1", "S1", "C1", domain.BookingConfirmed, time.Hour)}}

	draft := domain.BookingDraft{TempID: "tmp-1", CustomerID: "C1", ServiceID: "S2", SubmittedAt: now}
	s = r.Reduce(s, BookingSubmitted{Booking: draft.Optimistic("DJ", "Music")})

	require.Equal(t, []string{"tmp-1", "b1"}, ids(s.Bookings))
	assert.True(t, s.Bookings[0].IsOptimistic)
	assert.Equal(t, domain.BookingPending, s.Bookings[0].Status)
	assert.Len(t, s.Optimistic(), 1)
}

func TestReduce_SubmitTwiceIsNoop(t *testing.T) {
	r := testReducer()
	b := optimistic("tmp-1", "S2", "C1", 0)

	s := r.Reduce(State{}, BookingSubmitted{Booking: b})
	s = r.Reduce(s, BookingSubmitted{Booking: b})

	assert.Len(t, s.Bookings, 1)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	r := testReducer()
	in := State{Bookings: []domain.Booking{optimistic("tmp-1", "S2", "C1", 0)}}

	_ = r.Reduce(in, SubmissionConfirmed{TempID: "tmp-1", Booking: booking("real-1", "S2", "C1", domain.BookingPending, 0)})

	assert.Equal(t, "tmp-1", in.Bookings[0].ID)
	assert.True(t, in.Bookings[0].IsOptimistic)
}

func TestReduce_ConfirmReplacesOptimistic(t *testing.T) {
	r := testReducer()
	s := r.Reduce(State{}, BookingSubmitted{Booking: optimistic("tmp-1", "S2", "C1", 0)})

	s = r.Reduce(s, SubmissionConfirmed{
		TempID:  "tmp-1",
		Booking: booking("real-1", "S2", "C1", domain.BookingPending, 0),
	})

	require.Len(t, s.Bookings, 1)
	assert.Equal(t, "real-1", s.Bookings[0].ID)
	assert.Equal(t, "tmp-1", s.Bookings[0].TempID)
	assert.False(t, s.Bookings[0].IsOptimistic)
}

func TestReduce_ConfirmAfterRefreshDropsDuplicate(t *testing.T) {
	r := testReducer()
	s := State{Bookings: []domain.Booking{
		optimistic("tmp-1", "S2", "C1", 0),
		booking("real-1", "S2", "C1", domain.BookingPending, 0),
	}}

	s = r.Reduce(s, SubmissionConfirmed{TempID: "tmp-1", Booking: booking("real-1", "S2", "C1", domain.BookingPending, 0)})

	assert.Equal(t, []string{"real-1"}, ids(s.Bookings))
}

func TestReduce_FailureRollsBack(t *testing.T) {
	r := testReducer()
	s := State{Bookings: []domain.Booking{booking("b1", "S1", "C1", domain.BookingConfirmed, time.Hour)}}
	s = r.Reduce(s, BookingSubmitted{Booking: optimistic("tmp-1", "S2", "C1", 0)})

	s = r.Reduce(s, SubmissionFailed{TempID: "tmp-1", Reason: "slot taken", At: now})

	assert.Equal(t, []string{"b1"}, ids(s.Bookings))
	require.NotNil(t, s.Notice)
	assert.Equal(t, NoticeSubmissionFailed, s.Notice.Kind)
	assert.Equal(t, "slot taken", s.Notice.Message)

	s = r.Reduce(s, NoticeDismissed{})
	assert.Nil(t, s.Notice)
}

func TestReduce_FailureKeepsConfirmedBooking(t *testing.T) {
	r := testReducer()
	confirmed := booking("real-1", "S2", "C1", domain.BookingPending, 0)
	confirmed.TempID = "tmp-1"

	s := r.Reduce(State{Bookings: []domain.Booking{confirmed}}, SubmissionFailed{TempID: "tmp-1", Reason: "late"})

	assert.Equal(t, []string{"real-1"}, ids(s.Bookings))
}

func TestReduce_LoadedClearsFetchNotice(t *testing.T) {
	r := testReducer()
	s := r.Reduce(State{}, FetchFailed{Resource: "bookings", Err: "boom", At: now})
	require.NotNil(t, s.Notice)
	assert.Contains(t, s.Notice.Message, "bookings")

	s = r.Reduce(s, BookingsLoaded{Bookings: []domain.Booking{booking("b1", "S1", "C1", domain.BookingPending, 0)}, At: now})

	assert.Nil(t, s.Notice)
	assert.Equal(t, now, s.SyncedAt)
	assert.Equal(t, []string{"b1"}, ids(s.Bookings))
}

func TestReduce_BookingChanged(t *testing.T) {
	r := testReducer()
	local := booking("b1", "S1", "C1", domain.BookingPending, time.Hour)
	local.Requirements = "stage"
	s := State{Bookings: []domain.Booking{local}}

	s = r.Reduce(s, BookingChanged{Booking: domain.Booking{ID: "b1", Status: domain.BookingConfirmed}})
	require.Len(t, s.Bookings, 1)
	assert.Equal(t, domain.BookingConfirmed, s.Bookings[0].Status)
	assert.Equal(t, "stage", s.Bookings[0].Requirements)

	s = r.Reduce(s, BookingChanged{Booking: booking("b2", "S3", "C1", domain.BookingPending, 0)})
	assert.Equal(t, []string{"b2", "b1"}, ids(s.Bookings))
}
