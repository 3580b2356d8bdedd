package service

import (
	"context"

	"civicsolve/internal/domain/entity"
)

// Dispatcher hands a lifecycle event to the notification pipeline. Implementations must
// return quickly; delivery happens out of band.
type Dispatcher interface {
	Dispatch(ctx context.Context, event entity.ComplaintEvent) error
}

// Sink delivers one event over one channel (email, realtime push).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event entity.ComplaintEvent) error
}
