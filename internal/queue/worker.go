package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

const retryLaterReason = "booking could not be created, please try again"

type Creator interface {
	Create(ctx context.Context, d domain.BookingDraft) (domain.Booking, error)
}

// Reconciler applies the outcome of a submission to the customer's
// dashboard.
type Reconciler interface {
	ConfirmSubmission(ctx context.Context, d domain.BookingDraft, b domain.Booking) error
	FailSubmission(ctx context.Context, d domain.BookingDraft, reason string) error
}

type Handler struct {
	creator     Creator
	reconciler  Reconciler
	isRejection func(error) bool
	reasons     []error
	logger      *slog.Logger

	lastAttempt func(ctx context.Context) bool
}

// NewHandler builds the booking worker. isRejection tells permanent
// failures from transient ones; when it matches, the first of reasons that
// err wraps is shown to the customer.
func NewHandler(
	creator Creator,
	reconciler Reconciler,
	isRejection func(error) bool,
	reasons []error,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		creator:     creator,
		reconciler:  reconciler,
		isRejection: isRejection,
		reasons:     reasons,
		logger:      logger,
		lastAttempt: isLastAttempt,
	}
}

// ProcessBookingCreate persists one submitted draft. A rejected draft is
// failed at once and never retried; a transient error is retried by the
// queue and only reported to the customer once retries run out.
func (h *Handler) ProcessBookingCreate(ctx context.Context, t *asynq.Task) error {
	const op = "queue.Handler.ProcessBookingCreate"

	d, err := ParseBookingCreate(t)
	if err != nil {
		return fmt.Errorf("%s: bad payload: %v: %w", op, err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("temp_id", d.TempID),
		slog.String("customer_id", d.CustomerID),
		slog.String("service_id", d.ServiceID),
	)

	b, err := h.creator.Create(ctx, d)
	if err != nil {
		if h.isRejection(err) {
			log.Info("booking rejected", slog.Any("error", err))

			if ferr := h.reconciler.FailSubmission(ctx, d, h.reason(err)); ferr != nil {
				return fmt.Errorf("%s: %w", op, ferr)
			}

			return fmt.Errorf("%s: %v: %w", op, err, asynq.SkipRetry)
		}

		if h.lastAttempt(ctx) {
			log.Error("booking creation gave up", slog.Any("error", err))

			if ferr := h.reconciler.FailSubmission(ctx, d, retryLaterReason); ferr != nil {
				log.Error("fail submission", slog.Any("error", ferr))
			}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := h.reconciler.ConfirmSubmission(ctx, d, b); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking confirmed", slog.String("booking_id", b.ID))

	return nil
}

func (h *Handler) reason(err error) string {
	for _, r := range h.reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return retryLaterReason
}

func isLastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}

	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}

	return retried >= maxRetry
}

// Server runs the booking worker.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(cfg Config, h *Handler, logger *slog.Logger) *Server {
	cfg = cfg.withDefaults()

	srv := asynq.NewServer(
		cfg.redisOpt(),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueBookings: 1,
			},
			Logger:   slogAdapter{log: logger.With(slog.String("component", "queue"))},
			LogLevel: asynq.InfoLevel,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warn("task failed",
					slog.String("type", task.Type()),
					slog.Any("error", err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingCreate, h.ProcessBookingCreate)

	return &Server{srv: srv, mux: mux}
}

// Run processes tasks until ctx is done, then waits for in-flight tasks.
func (s *Server) Run(ctx context.Context) error {
	const op = "queue.Server.Run"

	if err := s.srv.Start(s.mux); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	<-ctx.Done()
	s.srv.Shutdown()

	return nil
}
