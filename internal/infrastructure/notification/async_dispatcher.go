package notification

import (
	"context"
	"sync"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/infrastructure/metrics"
)

// AsyncDispatcher queues events in process and delivers them from a worker pool. Events
// still queued at shutdown are delivered before Close returns.
type AsyncDispatcher struct {
	queue     chan entity.ComplaintEvent
	deliverer *Deliverer
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

func NewAsyncDispatcher(deliverer *Deliverer, capacity int) *AsyncDispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	return &AsyncDispatcher{
		queue:     make(chan entity.ComplaintEvent, capacity),
		deliverer: deliverer,
	}
}

func (a *AsyncDispatcher) Dispatch(ctx context.Context, event entity.ComplaintEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		metrics.ObserveNotification("queue", "dropped")
		return ErrQueueFull
	}

	select {
	case a.queue <- event:
		return nil
	default:
		metrics.ObserveNotification("queue", "dropped")
		return ErrQueueFull
	}
}

func (a *AsyncDispatcher) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			for event := range a.queue {
				a.deliverer.Deliver(ctx, event)
			}
		}()
	}
}

// Close stops accepting events and waits for the workers to drain the queue.
func (a *AsyncDispatcher) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
