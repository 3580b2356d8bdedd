package notification

import (
	"context"
	stderrors "errors"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/service"
	"civicsolve/internal/infrastructure/metrics"
	"civicsolve/internal/infrastructure/reliability/retry"
	"civicsolve/pkg/logger"
)

var (
	// ErrNoRecipient means the sink had nobody to deliver to; it is not retried.
	ErrNoRecipient = stderrors.New("notification has no recipient for this channel")
	// ErrQueueFull is returned by Dispatch when the event was dropped.
	ErrQueueFull = stderrors.New("notification queue is full")
)

// Deliverer runs one event through every sink, retrying each independently.
type Deliverer struct {
	sinks []service.Sink
	retry *retry.Config
}

func NewDeliverer(cfg *retry.Config, sinks ...service.Sink) *Deliverer {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(err error) bool { return !stderrors.Is(err, ErrNoRecipient) }
	}
	return &Deliverer{sinks: sinks, retry: cfg}
}

// Deliver reports whether every sink either delivered or had nothing to do.
func (d *Deliverer) Deliver(ctx context.Context, event entity.ComplaintEvent) bool {
	log := logger.WithComplaint(event.Complaint.ComplaintID, "notification").
		WithField("event", event.Type).
		WithField("event_id", event.ID)

	ok := true
	for _, sink := range d.sinks {
		sink := sink
		_, err := retry.Do(ctx, d.retry, log, "notify."+sink.Name(), func(ctx context.Context) (struct{}, error) {
			return struct{}{}, sink.Deliver(ctx, event)
		})

		switch {
		case err == nil:
			metrics.ObserveNotification(sink.Name(), "sent")
		case stderrors.Is(err, ErrNoRecipient):
			metrics.ObserveNotification(sink.Name(), "skipped")
		default:
			ok = false
			metrics.ObserveNotification(sink.Name(), "failed")
			log.WithError(err).WithField("channel", sink.Name()).Error("Notification delivery failed")
		}
	}
	return ok
}
