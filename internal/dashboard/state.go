package dashboard

import (
	"time"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

type NoticeKind string

const (
	NoticeFetchFailed      NoticeKind = "fetch_failed"
	NoticeSubmissionFailed NoticeKind = "submission_failed"
)

// Notice is the last user-visible problem. The dashboard keeps showing the
// previous data alongside it.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// State is everything the dashboard knows about one customer.
type State struct {
	CustomerID  string              `json:"customerId"`
	Bookings    []domain.Booking    `json:"bookings"`
	BidRequests []domain.BidRequest `json:"bidRequests"`
	Notice      *Notice             `json:"notice,omitempty"`
	SyncedAt    time.Time           `json:"syncedAt"`
}

func (s State) Optimistic() []domain.Booking {
	var out []domain.Booking
	for _, b := range s.Bookings {
		if b.IsOptimistic {
			out = append(out, b)
		}
	}
	return out
}

// Action is a state transition applied by Reducer.
type Action interface {
	action()
}

type BookingsLoaded struct {
	Bookings []domain.Booking
	At       time.Time
}

type BidRequestsLoaded struct {
	BidRequests []domain.BidRequest
	At          time.Time
}

type FetchFailed struct {
	Resource string
	Err      string
	At       time.Time
}

type BookingSubmitted struct {
	Booking domain.Booking
}

type SubmissionConfirmed struct {
	TempID  string
	Booking domain.Booking
}

type SubmissionFailed struct {
	TempID string
	Reason string
	At     time.Time
}

type BookingChanged struct {
	Booking domain.Booking
}

type NoticeDismissed struct{}

func (BookingsLoaded) action()      {}
func (BidRequestsLoaded) action()   {}
func (FetchFailed) action()         {}
func (BookingSubmitted) action()    {}
func (SubmissionConfirmed) action() {}
func (SubmissionFailed) action()    {}
func (BookingChanged) action()      {}
func (NoticeDismissed) action()     {}

type Reducer struct {
	merger Merger
}

func NewReducer(m Merger) Reducer {
	return Reducer{merger: m}
}

// Reduce returns the state after applying a. The input state is not
// modified.
func (r Reducer) Reduce(s State, a Action) State {
	s.Bookings = append([]domain.Booking(nil), s.Bookings...)

	switch a := a.(type) {
	case BookingsLoaded:
		s.Bookings = r.merger.Merge(s.Bookings, a.Bookings)
		s.SyncedAt = a.At
		if s.Notice != nil && s.Notice.Kind == NoticeFetchFailed {
			s.Notice = nil
		}

	case BidRequestsLoaded:
		s.BidRequests = append([]domain.BidRequest(nil), a.BidRequests...)

	case FetchFailed:
		s.Notice = &Notice{
			Kind:    NoticeFetchFailed,
			Message: "could not refresh " + a.Resource + ": " + a.Err,
			At:      a.At,
		}

	case BookingSubmitted:
		b := a.Booking
		b.IsOptimistic = true
		if b.ID == "" {
			b.ID = b.TempID
		}
		if indexByTempID(s.Bookings, b.TempID) >= 0 {
			break
		}
		s.Bookings = append([]domain.Booking{b}, s.Bookings...)

	case SubmissionConfirmed:
		s.Bookings = confirm(s.Bookings, a.TempID, a.Booking)

	case SubmissionFailed:
		if i := indexByTempID(s.Bookings, a.TempID); i >= 0 && s.Bookings[i].IsOptimistic {
			s.Bookings = append(s.Bookings[:i], s.Bookings[i+1:]...)
		}
		s.Notice = &Notice{
			Kind:    NoticeSubmissionFailed,
			Message: a.Reason,
			At:      a.At,
		}

	case BookingChanged:
		if i := indexByID(s.Bookings, a.Booking.ID); i >= 0 {
			s.Bookings[i] = overlay(s.Bookings[i], a.Booking)
		} else {
			b := a.Booking
			b.IsOptimistic = false
			s.Bookings = append([]domain.Booking{b}, s.Bookings...)
		}

	case NoticeDismissed:
		s.Notice = nil
	}

	return s
}

func confirm(bookings []domain.Booking, tempID string, b domain.Booking) []domain.Booking {
	b.IsOptimistic = false
	b.TempID = tempID

	ti := indexByTempID(bookings, tempID)
	ri := indexByID(bookings, b.ID)

	switch {
	case ri >= 0:
		bookings[ri] = overlay(bookings[ri], b)
		if ti >= 0 && ti != ri {
			bookings = append(bookings[:ti], bookings[ti+1:]...)
		}
	case ti >= 0:
		bookings[ti] = overlay(bookings[ti], b)
	default:
		bookings = append([]domain.Booking{b}, bookings...)
	}

	return bookings
}

func indexByTempID(bookings []domain.Booking, tempID string) int {
	if tempID == "" {
		return -1
	}
	for i, b := range bookings {
		if b.TempID == tempID {
			return i
		}
	}
	return -1
}

func indexByID(bookings []domain.Booking, id string) int {
	if id == "" {
		return -1
	}
	for i, b := range bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}
