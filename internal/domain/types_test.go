package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingInProgress, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingInProgress, BookingCompleted, true},
		{BookingInProgress, BookingCancelled, false},
		{BookingCompleted, BookingPending, false},
		{BookingCancelled, BookingPending, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestBookingStatus_Active(t *testing.T) {
	assert.True(t, BookingPending.Active())
	assert.True(t, BookingConfirmed.Active())
	assert.True(t, BookingInProgress.Active())
	assert.False(t, BookingCompleted.Active())
	assert.False(t, BookingCancelled.Active())
	assert.False(t, BookingStatus("archived").Valid())
}

func TestBidRequestStatus_Active(t *testing.T) {
	assert.True(t, BidRequestOpen.Active())
	assert.True(t, BidRequestAwarded.Active())
	assert.False(t, BidRequestClosed.Active())
}

func TestBookingDraft_Optimistic(t *testing.T) {
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	d := BookingDraft{
		TempID:      "tmp-1",
		CustomerID:  "c1",
		ServiceID:   "s1",
		ProviderID:  "p1",
		EventDate:   "2030-06-01",
		EventTime:   "18:00",
		GuestCount:  40,
		SubmittedAt: at,
	}

	b := d.Optimistic("Catering Deluxe", "Catering")

	assert.Equal(t, "tmp-1", b.ID)
	assert.Equal(t, "tmp-1", b.TempID)
	assert.True(t, b.IsOptimistic)
	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, "Catering Deluxe", b.ServiceName)
	assert.Equal(t, "Catering", b.ServiceCategory)
	assert.Equal(t, at, b.CreatedAt)
	assert.Equal(t, 40, b.GuestCount)
}
