package httpgin

import (
	"github.com/kirinyoku/eventmarket/internal/domain"
	"github.com/kirinyoku/eventmarket/internal/service/dashboard"
)

type CreateProviderRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
	Email string `json:"email" binding:"omitempty,email"`
}

type CreateServiceRequest struct {
	ID          string  `json:"id"`
	ProviderID  string  `json:"providerId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Duration    string  `json:"duration"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateServiceRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type CreateBookingRequest struct {
	TempID       string  `json:"tempId"`
	ServiceID    string  `json:"serviceId" binding:"required"`
	EventDate    string  `json:"eventDate" binding:"required"`
	EventTime    string  `json:"eventTime"`
	Location     string  `json:"location"`
	Budget       float64 `json:"budget" binding:"gte=0"`
	GuestCount   int     `json:"guestCount" binding:"gte=0"`
	Requirements string  `json:"requirements"`
}

func (r CreateBookingRequest) toSubmit() dashboard.SubmitRequest {
	return dashboard.SubmitRequest{
		TempID:       r.TempID,
		ServiceID:    r.ServiceID,
		EventDate:    r.EventDate,
		EventTime:    r.EventTime,
		Location:     r.Location,
		Budget:       r.Budget,
		GuestCount:   r.GuestCount,
		Requirements: r.Requirements,
	}
}

type UpdateBookingStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required"`
}

type CreateBidRequestRequest struct {
	ServiceID           string   `json:"serviceId"`
	EventName           string   `json:"eventName" binding:"required"`
	EventType           string   `json:"eventType"`
	EventDate           string   `json:"eventDate" binding:"required"`
	Location            string   `json:"location"`
	Budget              float64  `json:"budget" binding:"gte=0"`
	GuestCount          int      `json:"guestCount" binding:"gte=0"`
	Requirements        string   `json:"requirements"`
	ServicesNeeded      []string `json:"servicesNeeded"`
	PreferredCategories []string `json:"preferredCategories"`
}

func (r CreateBidRequestRequest) toDomain(customerID string) domain.BidRequest {
	return domain.BidRequest{
		CustomerID:          customerID,
		ServiceID:           r.ServiceID,
		EventName:           r.EventName,
		EventType:           r.EventType,
		EventDate:           r.EventDate,
		Location:            r.Location,
		Budget:              r.Budget,
		GuestCount:          r.GuestCount,
		Requirements:        r.Requirements,
		ServicesNeeded:      r.ServicesNeeded,
		PreferredCategories: r.PreferredCategories,
	}
}

type SubmitBidRequest struct {
	ProviderID    string  `json:"providerId" binding:"required"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	Description   string  `json:"description"`
	EstimatedTime string  `json:"estimatedTime"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ConflictResponse struct {
	ServiceID string `json:"serviceId"`
	EventDate string `json:"eventDate"`
	EventTime string `json:"eventTime,omitempty"`
	Conflict  bool   `json:"conflict"`
}

// SubmitBookingResponse is returned with 202: the booking is shown right
// away and persisted by a background worker.
type SubmitBookingResponse struct {
	Booking domain.Booking `json:"booking"`
	TempID  string         `json:"tempId"`
}
