// Package live holds the ephemeral state of a live room: timed overlay
// queues for danmaku and gifts, a capped public chat screen, a websocket
// hub fanning room events out to viewers, and a connectivity monitor.
//
// Nothing in this package touches the remote store. Room state lives in
// memory and dies with the process.
package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item is one scheduled entry of a TTLQueue.
type Item[T any] struct {
	Id         string        `json:"id"`
	Payload    T             `json:"payload"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
	TTL        time.Duration `json:"ttl"`
}

// TTLQueue holds items that remove themselves after a per-item TTL.
// Each item gets its own removal timer; Remove is idempotent, so an early
// manual removal and the timer firing later do not conflict.
type TTLQueue[T any] struct {
	mu       sync.Mutex
	items    []*Item[T] // enqueue order
	timers   map[string]*time.Timer
	closed   bool
	onExpire func(Item[T])
}

// NewTTLQueue creates a queue. onExpire, if not nil, fires after an item
// leaves the queue (expiry or manual removal), outside the queue lock.
func NewTTLQueue[T any](onExpire func(Item[T])) *TTLQueue[T] {
	return &TTLQueue[T]{
		timers:   make(map[string]*time.Timer),
		onExpire: onExpire,
	}
}

// Enqueue schedules a payload for removal after ttl and returns the stored
// item. On a closed queue it is a no-op and returns false.
func (q *TTLQueue[T]) Enqueue(payload T, ttl time.Duration) (Item[T], bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return Item[T]{}, false
	}

	item := &Item[T]{
		Id:         uuid.NewString(),
		Payload:    payload,
		EnqueuedAt: time.Now(),
		TTL:        ttl,
	}
	q.items = append(q.items, item)
	id := item.Id
	q.timers[id] = time.AfterFunc(ttl, func() {
		q.Remove(id)
	})
	q.mu.Unlock()

	return *item, true
}

// Remove takes an item out of the queue. Removing an id that is already
// gone is a no-op; the first removal wins and fires onExpire once.
func (q *TTLQueue[T]) Remove(id string) bool {
	q.mu.Lock()
	timer, ok := q.timers[id]
	if !ok {
		q.mu.Unlock()
		return false
	}
	timer.Stop()
	delete(q.timers, id)

	var removed Item[T]
	for i, item := range q.items {
		if item.Id == id {
			removed = *item
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	closed := q.closed
	onExpire := q.onExpire
	q.mu.Unlock()

	if onExpire != nil && !closed {
		onExpire(removed)
	}
	return true
}

// Snapshot returns the live items in enqueue order.
func (q *TTLQueue[T]) Snapshot() []Item[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item[T], len(q.items))
	for i, item := range q.items {
		out[i] = *item
	}
	return out
}

// Len returns the number of live items.
func (q *TTLQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops all pending timers and rejects further enqueues. Expiry
// callbacks do not fire for items dropped by Close.
func (q *TTLQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}
