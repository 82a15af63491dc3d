package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventmarket/internal/domain"
)

var (
	errSlotTaken = errors.New("time slot already booked")
	errDown      = errors.New("connection refused")
)

type fakeCreator struct {
	booking domain.Booking
	err     error
	calls   int
}

func (f *fakeCreator) Create(_ context.Context, d domain.BookingDraft) (domain.Booking, error) {
	f.calls++
	if f.err != nil {
		return domain.Booking{}, f.err
	}
	b := f.booking
	b.TempID = d.TempID
	return b, nil
}

type fakeReconciler struct {
	confirmed []domain.Booking
	failed    []string
	err       error
}

func (f *fakeReconciler) ConfirmSubmission(_ context.Context, _ domain.BookingDraft, b domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, b)
	return nil
}

func (f *fakeReconciler) FailSubmission(_ context.Context, _ domain.BookingDraft, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.failed = append(f.failed, reason)
	return nil
}

func newTestHandler(c Creator, r Reconciler, last bool) *Handler {
	h := NewHandler(
		c,
		r,
		func(err error) bool { return errors.Is(err, errSlotTaken) },
		[]error{errSlotTaken},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	h.lastAttempt = func(context.Context) bool { return last }
	return h
}

func draftTask(t *testing.T) *asynq.Task {
	t.Helper()

	task, opts, err := NewBookingCreateTask(domain.BookingDraft{
		TempID:      "tmp-1",
		CustomerID:  "C1",
		ServiceID:   "S1",
		EventDate:   "2025-06-01",
		EventTime:   "18:00",
		SubmittedAt: time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, opts, 2)

	return task
}

func TestNewBookingCreateTask(t *testing.T) {
	task := draftTask(t)

	assert.Equal(t, TypeBookingCreate, task.Type())

	var d domain.BookingDraft
	require.NoError(t, json.Unmarshal(task.Payload(), &d))
	assert.Equal(t, "tmp-1", d.TempID)
	assert.Equal(t, "S1", d.ServiceID)
}

func TestProcessBookingCreate_Confirms(t *testing.T) {
	creator := &fakeCreator{booking: domain.Booking{ID: "real-1", Status: domain.BookingPending}}
	rec := &fakeReconciler{}

	err := newTestHandler(creator, rec, false).ProcessBookingCreate(context.Background(), draftTask(t))

	require.NoError(t, err)
	require.Len(t, rec.confirmed, 1)
	assert.Equal(t, "real-1", rec.confirmed[0].ID)
	assert.Equal(t, "tmp-1", rec.confirmed[0].TempID)
	assert.Empty(t, rec.failed)
}

func TestProcessBookingCreate_RejectionSkipsRetry(t *testing.T) {
	creator := &fakeCreator{err: errSlotTaken}
	rec := &fakeReconciler{}

	err := newTestHandler(creator, rec, false).ProcessBookingCreate(context.Background(), draftTask(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, []string{"time slot already booked"}, rec.failed)
	assert.Empty(t, rec.confirmed)
}

func TestProcessBookingCreate_TransientIsRetried(t *testing.T) {
	creator := &fakeCreator{err: errDown}
	rec := &fakeReconciler{}

	err := newTestHandler(creator, rec, false).ProcessBookingCreate(context.Background(), draftTask(t))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, errDown)
	assert.Empty(t, rec.failed)
}

func TestProcessBookingCreate_LastAttemptFailsSubmission(t *testing.T) {
	creator := &fakeCreator{err: errDown}
	rec := &fakeReconciler{}

	err := newTestHandler(creator, rec, true).ProcessBookingCreate(context.Background(), draftTask(t))

	require.Error(t, err)
	assert.Equal(t, []string{retryLaterReason}, rec.failed)
}

func TestProcessBookingCreate_ConfirmErrorIsRetried(t *testing.T) {
	creator := &fakeCreator{booking: domain.Booking{ID: "real-1"}}
	rec := &fakeReconciler{err: errDown}

	err := newTestHandler(creator, rec, false).ProcessBookingCreate(context.Background(), draftTask(t))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, 1, creator.calls)
}

func TestProcessBookingCreate_BadPayload(t *testing.T) {
	rec := &fakeReconciler{}
	creator := &fakeCreator{}

	err := newTestHandler(creator, rec, false).ProcessBookingCreate(
		context.Background(),
		asynq.NewTask(TypeBookingCreate, []byte("{")),
	)

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, creator.calls)
}

func TestIsLastAttempt_OutsideWorker(t *testing.T) {
	assert.False(t, isLastAttempt(context.Background()))
}
