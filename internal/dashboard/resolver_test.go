package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

func service(id string) domain.Service {
	return domain.Service{
		ID:         id,
		ProviderID: "P-" + id,
		Name:       "Service " + id,
		Category:   "Catering",
		IsActive:   true,
	}
}

func TestResolve_Bookable(t *testing.T) {
	got := Resolve(service("S1"), nil, nil, "C1")

	assert.Equal(t, Bookable, got.State)
	assert.Equal(t, "Book Now", got.Label)
	assert.True(t, got.CanBook)
	assert.Nil(t, got.Booking)
	assert.Empty(t, got.Upcoming)
}

func TestResolve_BookingStatusMapping(t *testing.T) {
	cases := []struct {
		status domain.BookingStatus
		want   AvailabilityState
	}{
		{domain.BookingPending, BookingPending},
		{domain.BookingConfirmed, AlreadyBooked},
		{domain.BookingInProgress, InProgress},
		{domain.BookingCompleted, Completed},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			b := booking("b1", "S1", "C1", tc.status, time.Hour)

			got := Resolve(service("S1"), []domain.Booking{b}, nil, "C1")

			assert.Equal(t, tc.want, got.State)
			assert.Equal(t, tc.want.Label(), got.Label)
		})
	}
}

func TestResolve_CompletedAllowsRebooking(t *testing.T) {
	b := booking("b1", "S3", "C1", domain.BookingCompleted, 24*time.Hour)

	got := Resolve(service("S3"), []domain.Booking{b}, nil, "C1")

	assert.Equal(t, Completed, got.State)
	assert.True(t, got.CanBook)
	assert.Zero(t, got.PendingCount)
	assert.Zero(t, got.ConfirmedCount)
}

func TestResolve_CancelledIsIgnored(t *testing.T) {
	b := booking("b1", "S1", "C1", domain.BookingCancelled, time.Hour)

	got := Resolve(service("S1"), []domain.Booking{b}, nil, "C1")

	assert.Equal(t, Bookable, got.State)
}

func TestResolve_ServiceIDBeatsCategory(t *testing.T) {
	byCategory := booking("cat", "OTHER", "C1", domain.BookingConfirmed, time.Hour)
	byCategory.ServiceCategory = "catering"
	byID := booking("id", "S1", "C1", domain.BookingPending, time.Hour)

	got := Resolve(service("S1"), []domain.Booking{byCategory, byID}, nil, "C1")

	require.NotNil(t, got.Booking)
	assert.Equal(t, "id", got.Booking.ID)
	assert.Equal(t, MatchServiceID, got.MatchedBy)
	assert.Equal(t, BookingPending, got.State)
}

func TestResolve_ProviderFallbackOnlyWithoutServiceID(t *testing.T) {
	s := service("S1")

	fromBid := booking("bid", "", "C1", domain.BookingConfirmed, time.Hour)
	fromBid.ProviderID = s.ProviderID

	otherService := booking("other", "S2", "C1", domain.BookingConfirmed, time.Hour)
	otherService.ProviderID = s.ProviderID

	got := Resolve(s, []domain.Booking{otherService, fromBid}, nil, "C1")

	require.NotNil(t, got.Booking)
	assert.Equal(t, "bid", got.Booking.ID)
	assert.Equal(t, MatchProviderID, got.MatchedBy)
}

func TestResolve_NameMatchIsCaseInsensitive(t *testing.T) {
	b := booking("b1", "", "C1", domain.BookingConfirmed, time.Hour)
	b.ServiceName = "  service s1 "

	got := Resolve(service("S1"), []domain.Booking{b}, nil, "C1")

	assert.Equal(t, MatchServiceName, got.MatchedBy)
	assert.Equal(t, AlreadyBooked, got.State)
}

func TestResolve_IgnoresOtherCustomers(t *testing.T) {
	b := booking("b1", "S1", "C2", domain.BookingConfirmed, time.Hour)

	got := Resolve(service("S1"), []domain.Booking{b}, nil, "C1")

	assert.Equal(t, Bookable, got.State)
}

func TestResolve_OpenBidRequestWins(t *testing.T) {
	req := domain.BidRequest{ID: "r1", Status: domain.BidRequestOpen, ServicesNeeded: []string{"S2"}}

	got := Resolve(service("S2"), nil, []domain.BidRequest{req}, "C1")

	assert.Equal(t, PendingConfirmed, got.State)
	assert.Equal(t, "Pending / Confirmed", got.Label)
	assert.False(t, got.CanBook)
	require.NotNil(t, got.BidRequest)
	assert.Equal(t, "r1", got.BidRequest.ID)
}

func TestResolve_OpenBeatsAwarded(t *testing.T) {
	reqs := []domain.BidRequest{
		{ID: "awarded", Status: domain.BidRequestAwarded, ServiceID: "S2"},
		{ID: "open", Status: domain.BidRequestOpen, PreferredCategories: []string{"CATERING"}},
	}

	got := Resolve(service("S2"), nil, reqs, "C1")

	assert.Equal(t, PendingConfirmed, got.State)
	assert.Equal(t, "open", got.BidRequest.ID)
}

func TestResolve_AwardedBidRequest(t *testing.T) {
	reqs := []domain.BidRequest{
		{ID: "closed", Status: domain.BidRequestClosed, ServiceID: "S2"},
		{ID: "awarded", Status: domain.BidRequestAwarded, ServiceID: "S2"},
	}
	b := booking("b1", "S2", "C1", domain.BookingPending, time.Hour)

	got := Resolve(service("S2"), []domain.Booking{b}, reqs, "C1")

	assert.Equal(t, BidAwarded, got.State)
}

func TestResolve_ClosedBidRequestIsInactive(t *testing.T) {
	reqs := []domain.BidRequest{{ID: "closed", Status: domain.BidRequestClosed, ServiceID: "S2"}}

	got := Resolve(service("S2"), nil, reqs, "C1")

	assert.Equal(t, Bookable, got.State)
	assert.Nil(t, got.BidRequest)
}

func TestResolve_CountsAndUpcomingOrder(t *testing.T) {
	late := booking("late", "S1", "C1", domain.BookingConfirmed, time.Hour)
	late.EventDate = "2025-07-01"
	late.EventTime = "18:00"

	early := booking("early", "S1", "C1", domain.BookingPending, time.Hour)
	early.EventDate = "2025-06-01"
	early.EventTime = "20:00:00"

	wholeDay := booking("whole", "S1", "C1", domain.BookingInProgress, time.Hour)
	wholeDay.EventDate = "2025-06-01"

	garbage := booking("garbage", "S1", "C1", domain.BookingPending, time.Hour)
	garbage.EventDate = "sometime soon"

	done := booking("done", "S1", "C1", domain.BookingCompleted, time.Hour)

	got := Resolve(service("S1"), []domain.Booking{late, early, wholeDay, garbage, done}, nil, "C1")

	assert.Equal(t, 2, got.PendingCount)
	assert.Equal(t, 2, got.ConfirmedCount)
	assert.Equal(t, []string{"garbage", "whole", "early", "late"}, ids(got.Upcoming))
}

func TestEventTime(t *testing.T) {
	b := domain.Booking{EventDate: "2025-06-01T00:00:00Z", EventTime: "18:30:00"}
	assert.Equal(t, time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC), EventTime(b))

	assert.Equal(t, time.Unix(0, 0).UTC(), EventTime(domain.Booking{}))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), EventTime(domain.Booking{EventDate: "2025-06-01", EventTime: "late"}))
}
