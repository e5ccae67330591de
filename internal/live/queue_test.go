package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T any](items []Item[T]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Id
	}
	return out
}

func TestEnqueueKeepsOrder(t *testing.T) {
	q := NewTTLQueue[string](nil)
	defer q.Close()

	a, ok := q.Enqueue("a", time.Hour)
	require.True(t, ok)
	b, ok := q.Enqueue("b", time.Hour)
	require.True(t, ok)

	snapshot := q.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, []string{a.Id, b.Id}, ids(snapshot))
	assert.Equal(t, "a", snapshot[0].Payload)
	assert.NotEqual(t, a.Id, b.Id)
}

func TestItemsExpireIndependently(t *testing.T) {
	q := NewTTLQueue[string](nil)
	defer q.Close()

	// long item first, short item enqueued later: expiry order follows
	// each item's own deadline, not enqueue order
	a, _ := q.Enqueue("long", 80*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	q.Enqueue("short", 30*time.Millisecond)

	time.Sleep(25 * time.Millisecond) // t=35ms, both alive
	assert.Equal(t, 2, q.Len())

	time.Sleep(20 * time.Millisecond) // t=55ms, short expired at 40ms
	snapshot := q.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, a.Id, snapshot[0].Id)

	time.Sleep(40 * time.Millisecond) // t=95ms, long expired at 80ms
	assert.Equal(t, 0, q.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	var expired []string
	q := NewTTLQueue[string](func(item Item[string]) {
		mu.Lock()
		expired = append(expired, item.Id)
		mu.Unlock()
	})
	defer q.Close()

	item, _ := q.Enqueue("x", time.Hour)

	assert.True(t, q.Remove(item.Id))
	assert.False(t, q.Remove(item.Id), "second removal is a no-op")
	assert.False(t, q.Remove("no-such-id"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{item.Id}, expired, "callback fires exactly once")
}

func TestExpiryCallbackFiresOnTimer(t *testing.T) {
	done := make(chan Item[string], 1)
	q := NewTTLQueue[string](func(item Item[string]) {
		done <- item
	})
	defer q.Close()

	sent, _ := q.Enqueue("x", 20*time.Millisecond)

	select {
	case item := <-done:
		assert.Equal(t, sent.Id, item.Id)
	case <-time.After(time.Second):
		t.Fatal("expiry callback never fired")
	}
	assert.Equal(t, 0, q.Len())
}

func TestCloseStopsQueue(t *testing.T) {
	fired := make(chan struct{}, 8)
	q := NewTTLQueue[string](func(Item[string]) {
		fired <- struct{}{}
	})

	q.Enqueue("x", 20*time.Millisecond)
	q.Close()

	_, ok := q.Enqueue("y", time.Hour)
	assert.False(t, ok, "closed queue rejects enqueues")
	assert.Equal(t, 0, q.Len())

	select {
	case <-fired:
		t.Fatal("no expiry callbacks after close")
	case <-time.After(50 * time.Millisecond):
	}

	q.Close() // second close is a no-op
}
