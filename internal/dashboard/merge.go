// Package dashboard holds the customer dashboard logic: reconciling
// optimistic bookings with the server's list, deciding whether a service
// can be booked, and pre-validating requested slots. Everything here is pure
// and safe to call repeatedly with the same inputs.
package dashboard

import (
	"time"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

// DefaultOptimisticWindow is how long a local booking that the server does
// not know about yet is kept before it is considered failed.
const DefaultOptimisticWindow = 5 * time.Minute

// Merger merges freshly fetched bookings into the previous list.
type Merger struct {
	Window time.Duration
	Now    func() time.Time
}

func NewMerger(window time.Duration) Merger {
	if window <= 0 {
		window = DefaultOptimisticWindow
	}

	return Merger{Window: window, Now: time.Now}
}

func (m Merger) Merge(prev, backend []domain.Booking) []domain.Booking {
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	window := m.Window
	if window <= 0 {
		window = DefaultOptimisticWindow
	}

	return MergeBookings(prev, backend, now, window)
}

type pairKey struct {
	serviceID  string
	customerID string
}

func activePair(b domain.Booking) (pairKey, bool) {
	if b.ServiceID == "" || !b.Active() {
		return pairKey{}, false
	}

	return pairKey{serviceID: b.ServiceID, customerID: b.CustomerID}, true
}

// MergeBookings reconciles prev (which may hold optimistic entries) with the
// list just fetched from the backend.
//
// The backend list is the base. A local entry the backend knows by id is
// shallow-merged under the backend version. A local entry the backend does
// not know is dropped when the backend already holds an active booking for
// the same service and customer, kept when it was created within window of
// now, and dropped otherwise. Survivors are placed before the backend
// entries, in their original order.
//
// Callers must not invoke MergeBookings after a failed fetch; an empty
// backend list means "the customer has no bookings".
func MergeBookings(prev, backend []domain.Booking, now time.Time, window time.Duration) []domain.Booking {
	local := make(map[string]domain.Booking, len(prev))
	for _, b := range prev {
		if _, ok := local[b.ID]; !ok {
			local[b.ID] = b
		}
	}

	base := make([]domain.Booking, 0, len(backend))
	ids := make(map[string]struct{}, len(backend))
	pairs := make(map[pairKey]struct{}, len(backend))

	for _, b := range backend {
		if _, dup := ids[b.ID]; dup {
			continue
		}

		if l, ok := local[b.ID]; ok {
			b = overlay(l, b)
		}

		if k, ok := activePair(b); ok {
			if _, dup := pairs[k]; dup {
				continue
			}
			pairs[k] = struct{}{}
		}

		ids[b.ID] = struct{}{}
		base = append(base, b)
	}

	var kept []domain.Booking
	for _, b := range prev {
		if _, ok := ids[b.ID]; ok {
			continue
		}

		if b.ServiceID != "" {
			if _, superseded := pairs[pairKey{serviceID: b.ServiceID, customerID: b.CustomerID}]; superseded {
				continue
			}
		}

		if !fresh(b, now, window) {
			continue
		}

		if k, ok := activePair(b); ok {
			pairs[k] = struct{}{}
		}

		ids[b.ID] = struct{}{}
		kept = append(kept, b)
	}

	return append(kept, base...)
}

func fresh(b domain.Booking, now time.Time, window time.Duration) bool {
	if b.CreatedAt.IsZero() {
		return false
	}

	return now.Sub(b.CreatedAt) <= window
}

// overlay copies every non-zero field of remote over local. The result is
// always a server-confirmed booking.
func overlay(local, remote domain.Booking) domain.Booking {
	out := local

	out.ID = remote.ID
	setString(&out.ServiceID, remote.ServiceID)
	setString(&out.ProviderID, remote.ProviderID)
	setString(&out.CustomerID, remote.CustomerID)
	setString(&out.ServiceName, remote.ServiceName)
	setString(&out.ServiceCategory, remote.ServiceCategory)
	setString(&out.EventDate, remote.EventDate)
	setString(&out.EventTime, remote.EventTime)
	setString(&out.Location, remote.Location)
	setString(&out.Requirements, remote.Requirements)

	if remote.Status != "" {
		out.Status = remote.Status
	}
	if remote.Budget != 0 {
		out.Budget = remote.Budget
	}
	if remote.GuestCount != 0 {
		out.GuestCount = remote.GuestCount
	}
	if !remote.CreatedAt.IsZero() {
		out.CreatedAt = remote.CreatedAt
	}
	if !remote.UpdatedAt.IsZero() {
		out.UpdatedAt = remote.UpdatedAt
	}

	out.IsOptimistic = false

	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
