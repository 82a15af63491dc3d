package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// Client enqueues background work.
type Client struct {
	client    taskEnqueuer
	inspector taskInspector
	cfg       Config
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()

	return &Client{
		client:    asynq.NewClient(cfg.redisOpt()),
		inspector: asynq.NewInspector(cfg.redisOpt()),
		cfg:       cfg,
	}
}

// EnqueueBookingCreate schedules persistence of an accepted draft. Queuing
// a draft that is still waiting or running is a no-op. A draft whose
// earlier task already finished, for example one archived after a
// rejection, is queued again.
func (c *Client) EnqueueBookingCreate(ctx context.Context, d domain.BookingDraft) error {
	const op = "queue.Client.EnqueueBookingCreate"

	task, opts, err := NewBookingCreateTask(d)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	opts = append(opts,
		asynq.MaxRetry(c.cfg.MaxRetry),
		asynq.Timeout(c.cfg.TaskTimeout),
	)

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		err = c.replaceFinished(ctx, task, BookingTaskID(d), opts)
	}
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// replaceFinished resolves a task id conflict. The held task is dropped and
// the new one enqueued only if the held one will never run again.
func (c *Client) replaceFinished(ctx context.Context, task *asynq.Task, id string, opts []asynq.Option) error {
	info, err := c.inspector.GetTaskInfo(QueueBookings, id)
	switch {
	case errors.Is(err, asynq.ErrTaskNotFound):
	case err != nil:
		return fmt.Errorf("inspect task %s: %w", id, err)
	case info.State == asynq.TaskStateArchived, info.State == asynq.TaskStateCompleted:
		if err := c.inspector.DeleteTask(QueueBookings, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return fmt.Errorf("delete task %s: %w", id, err)
		}
	default:
		return nil
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Another submission with the same id won the race.
		return nil
	}

	return err
}

func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}
