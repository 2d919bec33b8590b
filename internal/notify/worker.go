package notify

import (
	"context"
	"errors"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("notification queue is full")

type task struct {
	booking    *models.Booking
	status     string
	adminNotes string
}

// Worker dispatches queued notifications off the request path. Delivery
// failures are retried with backoff and then dropped with a log entry
// and a metric; they never reach the lifecycle caller, whose transition
// is already committed.
type Worker struct {
	notifier domain.Notifier
	queue    chan task
	retry    RetryPolicy
	logger   *zerolog.Logger
}

// NewWorker builds a worker with sane retry defaults.
func NewWorker(notifier domain.Notifier, retry RetryPolicy, logger *zerolog.Logger) *Worker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &Worker{
		notifier: notifier,
		queue:    make(chan task, models.NotifyQueueSize),
		retry:    retry,
		logger:   logger,
	}
}

// Enqueue accepts a notification without blocking the caller. A full
// queue is reported as an error the caller may log but must not treat
// as a transition failure.
func (w *Worker) Enqueue(ctx context.Context, booking *models.Booking, status, adminNotes string) error {
	select {
	case w.queue <- task{booking: booking, status: status, adminNotes: adminNotes}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the dispatch loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.dispatch(ctx, t)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, t task) {
	for attempt := 1; ; attempt++ {
		err := w.notifier.Notify(ctx, t.booking, t.status, t.adminNotes)
		if err == nil {
			w.logger.Info().
				Str("booking_id", t.booking.ID).
				Str("status", t.status).
				Int("attempt", attempt).
				Msg("notification delivered")
			return
		}

		if attempt >= w.retry.MaxRetries {
			metrics.IncNotifyFailure()
			w.logger.Error().Err(err).
				Str("booking_id", t.booking.ID).
				Str("status", t.status).
				Int("attempts", attempt).
				Msg("notification dropped after retries")
			return
		}

		w.logger.Warn().Err(err).
			Str("booking_id", t.booking.ID).
			Int("attempt", attempt).
			Msg("notification delivery failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
}
