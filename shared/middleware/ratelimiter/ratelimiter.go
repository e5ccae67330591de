package ratelimiter

import (
	"sync"
	"time"
)

// limiter is a token bucket for a single identity.
type limiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *UserRateLimiter
}

// UserRateLimiter manages per-identity token buckets. Idle buckets expire
// via a deferred timer so the map doesn't grow without bound.
type UserRateLimiter struct {
	limiters       map[string]*limiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a limiter producing `rate` tokens per second with the given
// burst capacity. Idle identities are forgotten after expirationTime.
func New(rate, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*limiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func (u *UserRateLimiter) cleanup(identity string) {
	u.mu.Lock()
	delete(u.limiters, identity)
	u.mu.Unlock()
}

func (l *limiter) resetTimer() {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.parent.expirationTime, func() {
		l.parent.cleanup(l.identity)
	})
}

func (u *UserRateLimiter) getLimiter(identity string) *limiter {
	u.mu.RLock()
	l, exists := u.limiters[identity]
	u.mu.RUnlock()

	if exists {
		l.resetTimer()
		return l
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	// Double-check after acquiring write lock
	l, exists = u.limiters[identity]
	if exists {
		l.resetTimer()
		return l
	}

	l = &limiter{
		tokens:     u.capacity,
		capacity:   u.capacity,
		rate:       u.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     u,
	}
	u.limiters[identity] = l
	l.resetTimer()

	return l
}

func (l *limiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastRefill = now

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Allow reports whether a request from the given identity may proceed.
func (u *UserRateLimiter) Allow(identity string) bool {
	return u.getLimiter(identity).allow()
}

// Stop cancels all expiration timers.
func (u *UserRateLimiter) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, l := range u.limiters {
		if l.timer != nil {
			l.timer.Stop()
		}
	}
}

// Common presets

func Rps10() *UserRateLimiter  { return New(10, 10, 1*time.Hour) }
func Rps100() *UserRateLimiter { return New(100, 100, 1*time.Hour) }

func OnceInSecond() *UserRateLimiter { return New(1, 1, 1*time.Hour) }
