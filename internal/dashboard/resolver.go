package dashboard

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

type AvailabilityState string

const (
	Bookable         AvailabilityState = "bookable"
	PendingConfirmed AvailabilityState = "pending_confirmed"
	BidAwarded       AvailabilityState = "bid_awarded"
	BookingPending   AvailabilityState = "booking_pending"
	AlreadyBooked    AvailabilityState = "already_booked"
	InProgress       AvailabilityState = "in_progress"
	Completed        AvailabilityState = "completed"
)

var stateLabels = map[AvailabilityState]string{
	Bookable:         "Book Now",
	PendingConfirmed: "Pending / Confirmed",
	BidAwarded:       "Bid Awarded",
	BookingPending:   "Booking Pending",
	AlreadyBooked:    "Already Booked",
	InProgress:       "In Progress",
	Completed:        "Completed",
}

func (s AvailabilityState) Label() string {
	return stateLabels[s]
}

// CanBook reports whether a customer seeing this state may submit a new
// booking for the service.
func (s AvailabilityState) CanBook() bool {
	return s == Bookable || s == Completed
}

type Availability struct {
	Service    domain.Service     `json:"service"`
	State      AvailabilityState  `json:"state"`
	Label      string             `json:"label"`
	CanBook    bool               `json:"canBook"`
	MatchedBy  MatchRule          `json:"matchedBy,omitempty"`
	Booking    *domain.Booking    `json:"booking,omitempty"`
	BidRequest *domain.BidRequest `json:"bidRequest,omitempty"`

	PendingCount   int              `json:"pendingCount"`
	ConfirmedCount int              `json:"confirmedCount"`
	Upcoming       []domain.Booking `json:"upcoming"`
}

// MatchRule names one way a booking can be tied back to a catalog service.
// Only serviceID is a real foreign key; the others are heuristics kept for
// bookings created without one.
type MatchRule string

const (
	MatchServiceID   MatchRule = "service_id"
	MatchProviderID  MatchRule = "provider_id"
	MatchServiceName MatchRule = "service_name"
	MatchCategory    MatchRule = "category"
)

// BookingMatchRules is the priority order used by Resolve.
var BookingMatchRules = []MatchRule{
	MatchServiceID,
	MatchProviderID,
	MatchServiceName,
	MatchCategory,
}

func (r MatchRule) matches(s domain.Service, b domain.Booking) bool {
	switch r {
	case MatchServiceID:
		return s.ID != "" && b.ServiceID == s.ID
	case MatchProviderID:
		return b.ServiceID == "" && s.ProviderID != "" && b.ProviderID == s.ProviderID
	case MatchServiceName:
		name := normalize(s.Name)
		return name != "" && normalize(b.ServiceName) == name
	case MatchCategory:
		cat := normalize(s.Category)
		return cat != "" && normalize(b.ServiceCategory) == cat
	}
	return false
}

// MatchBooking returns the first booking in list order that satisfies the
// highest-priority rule any booking satisfies, considering only bookings
// accepted by eligible.
func MatchBooking(
	s domain.Service,
	bookings []domain.Booking,
	eligible func(domain.Booking) bool,
) (*domain.Booking, MatchRule) {
	for _, rule := range BookingMatchRules {
		for i := range bookings {
			if eligible(bookings[i]) && rule.matches(s, bookings[i]) {
				b := bookings[i]
				return &b, rule
			}
		}
	}
	return nil, ""
}

func matchesAny(s domain.Service, b domain.Booking) bool {
	for _, rule := range BookingMatchRules {
		if rule.matches(s, b) {
			return true
		}
	}
	return false
}

// MatchBidRequest finds an active bid request referring to the service. An
// open request wins over an awarded one.
func MatchBidRequest(s domain.Service, requests []domain.BidRequest) *domain.BidRequest {
	var awarded *domain.BidRequest

	for i := range requests {
		r := requests[i]
		if !r.Status.Active() || !referencesService(r, s) {
			continue
		}

		if r.Status == domain.BidRequestOpen {
			return &r
		}

		if awarded == nil {
			awarded = &r
		}
	}

	return awarded
}

func referencesService(r domain.BidRequest, s domain.Service) bool {
	if s.ID != "" && (r.ServiceID == s.ID || slices.Contains(r.ServicesNeeded, s.ID)) {
		return true
	}

	cat := normalize(s.Category)
	if cat == "" {
		return false
	}

	return slices.ContainsFunc(r.PreferredCategories, func(c string) bool {
		return normalize(c) == cat
	})
}

// Resolve decides what the viewing customer can do with service given
// their bookings and bid requests. It never fails; missing fields just
// don't match.
func Resolve(
	s domain.Service,
	bookings []domain.Booking,
	requests []domain.BidRequest,
	customerID string,
) Availability {
	own := func(b domain.Booking) bool {
		return b.CustomerID == "" || customerID == "" || b.CustomerID == customerID
	}

	booking, rule := MatchBooking(s, bookings, func(b domain.Booking) bool {
		return own(b) && b.Active()
	})
	if booking == nil {
		booking, rule = latestCompleted(s, bookings, own)
	}

	request := MatchBidRequest(s, requests)

	var state AvailabilityState
	switch {
	case request != nil && request.Status == domain.BidRequestOpen:
		state = PendingConfirmed
	case request != nil && request.Status == domain.BidRequestAwarded:
		state = BidAwarded
	case booking == nil:
		state = Bookable
	default:
		state = stateForBooking(booking.Status)
	}

	out := Availability{
		Service:    s,
		State:      state,
		Label:      state.Label(),
		CanBook:    state.CanBook(),
		MatchedBy:  rule,
		Booking:    booking,
		BidRequest: request,
		Upcoming:   []domain.Booking{},
	}

	for _, b := range bookings {
		if !own(b) || !b.Active() || !matchesAny(s, b) {
			continue
		}

		if b.Status == domain.BookingPending {
			out.PendingCount++
		} else {
			out.ConfirmedCount++
		}
		out.Upcoming = append(out.Upcoming, b)
	}

	SortByEventTime(out.Upcoming)

	return out
}

func latestCompleted(
	s domain.Service,
	bookings []domain.Booking,
	own func(domain.Booking) bool,
) (*domain.Booking, MatchRule) {
	var (
		best     *domain.Booking
		bestRule MatchRule
	)

	for _, rule := range BookingMatchRules {
		for i := range bookings {
			b := bookings[i]
			if !own(b) || b.Status != domain.BookingCompleted || !rule.matches(s, b) {
				continue
			}
			if best == nil || b.UpdatedAt.After(best.UpdatedAt) {
				best = &b
				bestRule = rule
			}
		}
		if best != nil {
			return best, bestRule
		}
	}

	return nil, ""
}

func stateForBooking(status domain.BookingStatus) AvailabilityState {
	switch status {
	case domain.BookingPending:
		return BookingPending
	case domain.BookingConfirmed:
		return AlreadyBooked
	case domain.BookingInProgress:
		return InProgress
	case domain.BookingCompleted:
		return Completed
	default:
		return AlreadyBooked
	}
}

// EventTime combines a booking's date and time for ordering. A missing time
// is the start of the day; an unparseable date is the Unix epoch.
func EventTime(b domain.Booking) time.Time {
	day, err := time.Parse(domain.DateLayout, NormalizeDate(b.EventDate))
	if err != nil {
		return time.Unix(0, 0).UTC()
	}

	clock := NormalizeClock(b.EventTime)
	if clock == "" {
		return day
	}

	t, err := time.Parse(domain.ClockLayout, clock)
	if err != nil {
		return day
	}

	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// SortByEventTime orders bookings ascending by event date and time, keeping
// list order for equal times.
func SortByEventTime(bookings []domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return EventTime(bookings[i]).Before(EventTime(bookings[j]))
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
