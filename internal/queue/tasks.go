package queue

import (
	"encoding/json"
	"net/url"

	"github.com/hibiken/asynq"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

const (
	TypeBookingCreate = "booking:create"

	QueueBookings = "bookings"
)

// BookingTaskID identifies a submission in the queue. Temp ids come from
// clients, so they are only unique per customer.
func BookingTaskID(d domain.BookingDraft) string {
	return url.QueryEscape(d.CustomerID) + "/" + url.QueryEscape(d.TempID)
}

// NewBookingCreateTask wraps a draft into a task. The task id is derived
// from the customer and temp id, so a submission is queued at most once.
func NewBookingCreateTask(d domain.BookingDraft) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeBookingCreate, b)
	opts := []asynq.Option{
		asynq.TaskID(BookingTaskID(d)),
		asynq.Queue(QueueBookings),
	}

	return task, opts, nil
}

func ParseBookingCreate(t *asynq.Task) (domain.BookingDraft, error) {
	var d domain.BookingDraft
	err := json.Unmarshal(t.Payload(), &d)
	return d, err
}
