package domain

import (
	"slices"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that block re-booking the same service.
var ActiveBookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingInProgress,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Active() bool {
	return slices.Contains(ActiveBookingStatuses, s)
}

// CanTransitionTo reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return slices.Contains(bookingTransitions[s], next)
}

type Booking struct {
	ID              string        `json:"id"`
	ServiceID       string        `json:"serviceId,omitempty"`
	ProviderID      string        `json:"providerId,omitempty"`
	CustomerID      string        `json:"customerId,omitempty"`
	ServiceName     string        `json:"serviceName,omitempty"`
	ServiceCategory string        `json:"category,omitempty"`
	EventDate       string        `json:"eventDate,omitempty"`
	EventTime       string        `json:"eventTime,omitempty"`
	Location        string        `json:"location,omitempty"`
	Status          BookingStatus `json:"status"`
	Budget          float64       `json:"budget,omitempty"`
	GuestCount      int           `json:"guestCount,omitempty"`
	Requirements    string        `json:"requirements,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Client-only fields, never persisted.
	IsOptimistic bool   `json:"isOptimistic,omitempty"`
	TempID       string `json:"tempId,omitempty"`
}

func (b Booking) Active() bool {
	return b.Status.Active()
}

// BookingDraft is a booking request that has been accepted by the dashboard
// but not yet persisted.
type BookingDraft struct {
	TempID       string    `json:"tempId"`
	CustomerID   string    `json:"customerId"`
	ServiceID    string    `json:"serviceId"`
	ProviderID   string    `json:"providerId"`
	EventDate    string    `json:"eventDate"`
	EventTime    string    `json:"eventTime,omitempty"`
	Location     string    `json:"location,omitempty"`
	Budget       float64   `json:"budget,omitempty"`
	GuestCount   int       `json:"guestCount,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Optimistic returns the client-side placeholder booking for the draft.
func (d BookingDraft) Optimistic(serviceName, category string) Booking {
	return Booking{
		ID:              d.TempID,
		TempID:          d.TempID,
		ServiceID:       d.ServiceID,
		ProviderID:      d.ProviderID,
		CustomerID:      d.CustomerID,
		ServiceName:     serviceName,
		ServiceCategory: category,
		EventDate:       d.EventDate,
		EventTime:       d.EventTime,
		Location:        d.Location,
		Status:          BookingPending,
		Budget:          d.Budget,
		GuestCount:      d.GuestCount,
		Requirements:    d.Requirements,
		CreatedAt:       d.SubmittedAt,
		UpdatedAt:       d.SubmittedAt,
		IsOptimistic:    true,
	}
}

type BidRequestStatus string

const (
	BidRequestOpen    BidRequestStatus = "open"
	BidRequestAwarded BidRequestStatus = "awarded"
	BidRequestClosed  BidRequestStatus = "closed"
)

func (s BidRequestStatus) Active() bool {
	return s == BidRequestOpen || s == BidRequestAwarded
}

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

type Bid struct {
	ID            string    `json:"id"`
	ProviderID    string    `json:"providerId"`
	ProviderName  string    `json:"providerName"`
	ProviderRole  string    `json:"providerRole,omitempty"`
	Price         float64   `json:"price"`
	Description   string    `json:"description,omitempty"`
	EstimatedTime string    `json:"estimatedTime,omitempty"`
	Status        BidStatus `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type BidRequest struct {
	ID                  string           `json:"id"`
	CustomerID          string           `json:"customerId"`
	ServiceID           string           `json:"serviceId,omitempty"`
	EventName           string           `json:"eventName"`
	EventType           string           `json:"eventType,omitempty"`
	EventDate           string           `json:"eventDate"`
	Location            string           `json:"location,omitempty"`
	Budget              float64          `json:"budget,omitempty"`
	GuestCount          int              `json:"guestCount,omitempty"`
	Requirements        string           `json:"requirements,omitempty"`
	ServicesNeeded      []string         `json:"servicesNeeded,omitempty"`
	PreferredCategories []string         `json:"preferredCategories,omitempty"`
	Status              BidRequestStatus `json:"status"`
	Bids                []Bid            `json:"bids"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

type Service struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"providerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Duration    string    `json:"duration,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	Services  []Service `json:"services"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScheduleEntry is the public projection of a booking on a service's
// calendar. It carries no customer identity.
type ScheduleEntry struct {
	ServiceID string        `json:"serviceId,omitempty"`
	EventDate string        `json:"eventDate"`
	EventTime string        `json:"eventTime,omitempty"`
	Status    BookingStatus `json:"status,omitempty"`
}
