package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/eventmarket/internal/domain"
	redisrepo "github.com/kirinyoku/eventmarket/internal/repository/redis"
	"github.com/kirinyoku/eventmarket/internal/service"
	"github.com/kirinyoku/eventmarket/internal/service/admin"
	"github.com/kirinyoku/eventmarket/internal/service/bidrequest"
	"github.com/kirinyoku/eventmarket/internal/service/booking"
	"github.com/kirinyoku/eventmarket/internal/service/catalog"
	"github.com/kirinyoku/eventmarket/internal/service/dashboard"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	idemLockTTL      = 60 * time.Second
	sseHeartbeat     = 25 * time.Second
	sseBufferedItems = 16
)

// ChangeSubscriber streams a customer's change notifications.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, customerID string, handler func(ctx context.Context, ch redisrepo.Change)) error
}

type RouterConfig struct {
	// AllowOrigins lists CORS origins; empty allows any.
	AllowOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	changes ChangeSubscriber,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
		CORS(cfg.AllowOrigins...),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Catalog
	r.GET("/services", handleListServices(svcs))
	r.GET("/services/:id", handleGetService(svcs))
	r.GET("/services/:id/schedule", handleGetSchedule(svcs))
	r.GET("/services/:id/conflicts", handleCheckConflict(svcs))
	r.GET("/providers", handleListProviders(svcs))

	r.PATCH("/bookings/:id/status", handleUpdateBookingStatus(svcs))
	r.POST("/bid-requests/:id/bids", handleSubmitBid(svcs))

	customer := r.Group("/customers/:customerId")
	{
		customer.GET("/bookings", handleListBookings(svcs))
		customer.POST("/bookings", handleSubmitBooking(svcs, idem, logger))

		customer.GET("/bid-requests", handleListBidRequests(svcs))
		customer.POST("/bid-requests", handleCreateBidRequest(svcs))
		customer.DELETE("/bid-requests/:id", handleDeleteBidRequest(svcs))
		customer.POST("/bid-requests/:id/bids/:bidId/accept", handleAcceptBid(svcs))
		customer.POST("/bid-requests/:id/bids/:bidId/reject", handleRejectBid(svcs))

		customer.GET("/dashboard", handleDashboard(svcs))
		customer.DELETE("/dashboard/notice", handleDismissNotice(svcs))
		customer.GET("/dashboard/events", handleDashboardEvents(changes, logger))
		customer.GET("/services/:serviceId/availability", handleServiceAvailability(svcs))
	}

	// Admin-API
	// TODO: add admin middleware
	adm := r.Group("/admin")
	{
		adm.POST("/providers", handleCreateProvider(svcs))
		adm.POST("/services", handleCreateService(svcs))
		adm.PATCH("/services/:id", handleUpdateService(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List active services
// @Success  200  {array}  domain.Service
// @Router   /services [get]
func handleListServices(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := svcs.Catalog.ListServices(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, services, "public, max-age=60", true)
	}
}

// @Summary  Get service
// @Param    id  path  string  true  "Service ID"
// @Success  200  {object}  domain.Service
// @Failure  404  {object}  ErrorResponse
// @Router   /services/{id} [get]
func handleGetService(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svcs.Catalog.GetService(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, s, "public, max-age=60", true)
	}
}

// @Summary  Booked dates of a service
// @Param    id  path  string  true  "Service ID"
// @Success  200  {array}  domain.ScheduleEntry
// @Failure  404  {object}  ErrorResponse
// @Router   /services/{id}/schedule [get]
func handleGetSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svcs.Catalog.Schedule(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, entries, "public, max-age=15", true)
	}
}

// @Summary  Check a date and time against the service schedule
// @Param    id    path   string  true   "Service ID"
// @Param    date  query  string  true   "YYYY-MM-DD"
// @Param    time  query  string  false  "HH:MM"
// @Success  200  {object}  ConflictResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /services/{id}/conflicts [get]
func handleCheckConflict(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID := c.Param("id")
		date := strings.TrimSpace(c.Query("date"))
		if date == "" {
			badRequest(c, "date is required")
			return
		}
		clock := strings.TrimSpace(c.Query("time"))

		conflict, err := svcs.Dashboard.CheckSlot(c.Request.Context(), serviceID, date, clock)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ConflictResponse{
			ServiceID: serviceID,
			EventDate: date,
			EventTime: clock,
			Conflict:  conflict,
		})
	}
}

// @Summary  List providers with their active services
// @Success  200  {array}  domain.Provider
// @Router   /providers [get]
func handleListProviders(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		providers, err := svcs.Catalog.ListProviders(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, providers, "public, max-age=60", true)
	}
}

// @Summary  List customer bookings
// @Param    customerId  path  string  true  "Customer ID"
// @Success  200  {array}  domain.Booking
// @Router   /customers/{customerId}/bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := svcs.Bookings.ListForCustomer(c.Request.Context(), c.Param("customerId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Submit booking (optimistic, idempotent)
// @Param    customerId  path  string  true  "Customer ID"
// @Param    req body  CreateBookingRequest true "payload"
// @Header   202 {string} Idempotency-Key "echo"
// @Success  202 {object} SubmitBookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "not bookable / slot taken / in flight"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /customers/{customerId}/bookings [post]
func handleSubmitBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.Param("customerId")

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(customerID, idemKey)

			if replayed := replayIdempotent(c, idem, idemStorageKey, idemKey); replayed {
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replayed := replayIdempotent(c, idem, idemStorageKey, idemKey); replayed {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		b, err := svcs.Dashboard.SubmitBooking(c.Request.Context(), customerID, req.toSubmit())
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := SubmitBookingResponse{Booking: b, TempID: b.TempID}

		if idemStorageKey != "" {
			payload, _ := json.Marshal(resp)
			if err := idem.SaveResult(c.Request.Context(), idemStorageKey, string(payload)); err != nil {
				logger.Warn("failed to save idempotent result", "key", idemStorageKey, "error", err)
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusAccepted, resp)
	}
}

func replayIdempotent(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}

	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusAccepted, "application/json; charset=utf-8", []byte(payload))

	return true
}

// @Summary  Move a booking to another status
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  UpdateBookingStatusRequest true "payload"
// @Success  200 {object} domain.Booking
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "transition not allowed"
// @Router   /bookings/{id}/status [patch]
func handleUpdateBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if !req.Status.Valid() {
			badRequest(c, "invalid status")
			return
		}

		b, err := svcs.Bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  List customer bid requests with bids
// @Param    customerId  path  string  true  "Customer ID"
// @Success  200  {array}  domain.BidRequest
// @Router   /customers/{customerId}/bid-requests [get]
func handleListBidRequests(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := svcs.BidRequests.ListForCustomer(c.Request.Context(), c.Param("customerId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

// @Summary  Open a bid request
// @Param    customerId  path  string  true  "Customer ID"
// @Param    req body  CreateBidRequestRequest true "payload"
// @Success  201 {object} domain.BidRequest
// @Failure  400 {object} ErrorResponse
// @Router   /customers/{customerId}/bid-requests [post]
func handleCreateBidRequest(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBidRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		br, err := svcs.BidRequests.Create(c.Request.Context(), req.toDomain(c.Param("customerId")))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, br)
	}
}

// @Summary  Delete an open bid request
// @Param    customerId  path  string  true  "Customer ID"
// @Param    id          path  string  true  "Bid request ID"
// @Success  204
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /customers/{customerId}/bid-requests/{id} [delete]
func handleDeleteBidRequest(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svcs.BidRequests.Delete(c.Request.Context(), c.Param("customerId"), c.Param("id"))
		respondErr(c, err)
	}
}

// @Summary  Place a bid on a request
// @Param    id  path  string  true  "Bid request ID"
// @Param    req body  SubmitBidRequest true "payload"
// @Success  201 {object} domain.Bid
// @Failure  409 {object} ErrorResponse
// @Router   /bid-requests/{id}/bids [post]
func handleSubmitBid(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitBidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		bid, err := svcs.BidRequests.SubmitBid(c.Request.Context(), c.Param("id"), domain.Bid{
			ProviderID:    req.ProviderID,
			Price:         req.Price,
			Description:   req.Description,
			EstimatedTime: req.EstimatedTime,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, bid)
	}
}

// @Summary  Accept a bid and create the booking
// @Param    customerId  path  string  true  "Customer ID"
// @Param    id          path  string  true  "Bid request ID"
// @Param    bidId       path  string  true  "Bid ID"
// @Success  201 {object} domain.Booking
// @Failure  409 {object} ErrorResponse
// @Router   /customers/{customerId}/bid-requests/{id}/bids/{bidId}/accept [post]
func handleAcceptBid(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.BidRequests.AcceptBid(
			c.Request.Context(),
			c.Param("customerId"),
			c.Param("id"),
			c.Param("bidId"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  Reject a bid
// @Param    customerId  path  string  true  "Customer ID"
// @Param    id          path  string  true  "Bid request ID"
// @Param    bidId       path  string  true  "Bid ID"
// @Success  204
// @Failure  409 {object} ErrorResponse
// @Router   /customers/{customerId}/bid-requests/{id}/bids/{bidId}/reject [post]
func handleRejectBid(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svcs.BidRequests.RejectBid(
			c.Request.Context(),
			c.Param("customerId"),
			c.Param("id"),
			c.Param("bidId"),
		)
		respondErr(c, err)
	}
}

// @Summary  Customer dashboard
// @Param    customerId  path  string  true  "Customer ID"
// @Success  200 {object} dashboard.View
// @Router   /customers/{customerId}/dashboard [get]
func handleDashboard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svcs.Dashboard.View(c.Request.Context(), c.Param("customerId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Availability of one service for the customer
// @Param    customerId  path  string  true  "Customer ID"
// @Param    serviceId   path  string  true  "Service ID"
// @Success  200 {object} dashcore.Availability
// @Failure  404 {object} ErrorResponse
// @Router   /customers/{customerId}/services/{serviceId}/availability [get]
func handleServiceAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svcs.Dashboard.ServiceAvailability(
			c.Request.Context(),
			c.Param("customerId"),
			c.Param("serviceId"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, a)
	}
}

// @Summary  Dismiss the dashboard notice
// @Param    customerId  path  string  true  "Customer ID"
// @Success  200 {object} dashcore.State
// @Router   /customers/{customerId}/dashboard/notice [delete]
func handleDismissNotice(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svcs.Dashboard.DismissNotice(c.Request.Context(), c.Param("customerId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// @Summary  Stream dashboard changes (server-sent events)
// @Param    customerId  path  string  true  "Customer ID"
// @Produce  text/event-stream
// @Success  200
// @Router   /customers/{customerId}/dashboard/events [get]
func handleDashboardEvents(changes ChangeSubscriber, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if changes == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event stream unavailable"})
			return
		}

		customerID := c.Param("customerId")
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		feed := make(chan redisrepo.Change, sseBufferedItems)
		go func() {
			defer close(feed)
			err := changes.Subscribe(ctx, customerID, func(ctx context.Context, ch redisrepo.Change) {
				select {
				case feed <- ch:
				case <-ctx.Done():
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("dashboard event stream ended", "customer_id", customerID, "error", err)
			}
		}()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")

		c.Stream(func(io.Writer) bool {
			select {
			case ch, ok := <-feed:
				if !ok {
					return false
				}
				c.SSEvent(ch.Type, ch)
				return true
			case <-heartbeat.C:
				c.SSEvent("ping", gin.H{"tsUnix": time.Now().Unix()})
				return true
			case <-ctx.Done():
				return false
			}
		})
	}
}

// @Summary  Create provider
// @Param    req body  CreateProviderRequest true "payload"
// @Success  201 {object} domain.Provider
// @Failure  409 {object} ErrorResponse
// @Router   /admin/providers [post]
func handleCreateProvider(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProviderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := svcs.Admin.CreateProvider(c.Request.Context(), domain.Provider{
			ID:    req.ID,
			Name:  req.Name,
			Role:  req.Role,
			Email: req.Email,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary  Create service
// @Param    req body  CreateServiceRequest true "payload"
// @Success  201 {object} domain.Service
// @Failure  404 {object} ErrorResponse "provider does not exist"
// @Failure  409 {object} ErrorResponse
// @Router   /admin/services [post]
func handleCreateService(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		s, err := svcs.Admin.CreateService(c.Request.Context(), domain.Service{
			ID:          req.ID,
			ProviderID:  req.ProviderID,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Duration:    req.Duration,
			IsActive:    active,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

// @Summary  Activate or deactivate a service
// @Param    id  path  string  true  "Service ID"
// @Param    req body  UpdateServiceRequest true "payload"
// @Success  200 {object} domain.Service
// @Failure  404 {object} ErrorResponse
// @Router   /admin/services/{id} [patch]
func handleUpdateService(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		s, err := svcs.Admin.SetServiceActive(c.Request.Context(), c.Param("id"), *req.IsActive)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// --- Helpers ---

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		rateLimited dashboard.RateLimitedError
		notBookable dashboard.NotBookableError
	)

	switch {
	// validation
	case errors.Is(err, booking.ErrInvalidBooking),
		errors.Is(err, bidrequest.ErrInvalidInput),
		errors.Is(err, admin.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	// dashboard service
	case errors.As(err, &rateLimited):
		c.Header("Retry-After", retryAfterSeconds(rateLimited.RetryAfter))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many booking submissions"})
	case errors.As(err, &notBookable):
		c.JSON(http.StatusConflict, gin.H{
			"error": notBookable.Error(),
			"state": notBookable.State,
		})
	case errors.Is(err, dashboard.ErrSubmissionInFlight):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking submission in progress"})
	case errors.Is(err, dashboard.ErrSlotTaken),
		errors.Is(err, booking.ErrSlotTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "time slot already booked"})
	case errors.Is(err, dashboard.ErrServiceUnavailable),
		errors.Is(err, booking.ErrServiceUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "service is not available for booking"})
	case errors.Is(err, dashboard.ErrServiceNotFound),
		errors.Is(err, catalog.ErrServiceNotFound),
		errors.Is(err, booking.ErrServiceNotFound),
		errors.Is(err, bidrequest.ErrServiceNotFound),
		errors.Is(err, admin.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
	// booking service
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	case errors.Is(err, booking.ErrAlreadyBooked),
		errors.Is(err, bidrequest.ErrAlreadyBooked):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "service already booked"})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "status transition not allowed"})
	// bid request service
	case errors.Is(err, bidrequest.ErrBidRequestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bid request not found"})
	case errors.Is(err, bidrequest.ErrBidNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bid not found"})
	case errors.Is(err, bidrequest.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "bid request belongs to another customer"})
	case errors.Is(err, bidrequest.ErrNotOpen):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bid request is not open"})
	case errors.Is(err, bidrequest.ErrBidNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bid already decided"})
	case errors.Is(err, bidrequest.ErrAlreadyBid):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "provider already placed a bid"})
	case errors.Is(err, bidrequest.ErrProviderNotFound),
		errors.Is(err, admin.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "provider not found"})
	// admin service
	case errors.Is(err, admin.ErrProviderConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "provider conflict"})
	case errors.Is(err, admin.ErrServiceConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "service conflict"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
