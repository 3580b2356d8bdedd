package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Policy is the sustained rate and burst allowed for one action.
type Policy struct {
	Limit rate.Limit
	Burst int
}

// PerMinute allows n events per minute with a burst of n.
func PerMinute(n int) Policy {
	if n <= 0 {
		n = 1
	}
	return Policy{Limit: rate.Every(time.Minute / time.Duration(n)), Burst: n}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client and action.
type RateLimiter struct {
	policies      map[string]Policy
	defaultPolicy Policy
	buckets       map[string]*bucket
	mutex         sync.Mutex
	now           func() time.Time
}

func NewRateLimiter(defaultPolicy Policy) *RateLimiter {
	return &RateLimiter{
		policies:      make(map[string]Policy),
		defaultPolicy: defaultPolicy,
		buckets:       make(map[string]*bucket),
		now:           time.Now,
	}
}

// SetPolicy overrides the default policy for action.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
}

// Allow consumes a token for client performing action. When refused it returns how long
// until the next token.
func (rl *RateLimiter) Allow(client, action string) (bool, time.Duration) {
	key := client + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		p, ok := rl.policies[action]
		if !ok {
			p = rl.defaultPolicy
		}
		b = &bucket{limiter: rate.NewLimiter(p.Limit, p.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine evicts idle buckets until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
