package notification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"civicsolve/internal/domain/entity"
	"civicsolve/pkg/logger"
)

const (
	redisPopTimeout  = 5 * time.Second
	redisPushTimeout = 2 * time.Second
	maxRequeues      = 3
)

func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisDispatcher pushes events onto a Redis list so any instance's workers can deliver
// them. Events whose delivery fails are requeued a bounded number of times.
type RedisDispatcher struct {
	rdb       *redis.Client
	key       string
	deliverer *Deliverer
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

func NewRedisDispatcher(rdb *redis.Client, key string, deliverer *Deliverer) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb, key: key, deliverer: deliverer}
}

func (r *RedisDispatcher) Dispatch(ctx context.Context, event entity.ComplaintEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	// The request may finish before the push does.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisPushTimeout)
	defer cancel()
	return r.rdb.LPush(pushCtx, r.key, payload).Err()
}

func (r *RedisDispatcher) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.work(ctx)
		}()
	}
}

func (r *RedisDispatcher) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		result, err := r.rdb.BRPop(ctx, redisPopTimeout, r.key).Result()
		if err != nil {
			if stderrors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			logger.Warn("Notification queue read failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPop returns [key, value].
		var event entity.ComplaintEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			logger.Error("Discarding malformed notification: %v", err)
			continue
		}

		// An event already popped is delivered even when Close is under way.
		if !r.deliverer.Deliver(context.WithoutCancel(ctx), event) && event.Attempts < maxRequeues {
			event.Attempts++
			if err := r.Dispatch(ctx, event); err != nil {
				logger.Error("Failed to requeue notification %s: %v", event.ID, err)
			}
		}
	}
}

// Close stops the workers and waits for in-flight deliveries to finish.
func (r *RedisDispatcher) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
