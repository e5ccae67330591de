package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
)

type mockLikeStorage struct {
	mu          sync.Mutex
	createCalls int
	deleteCalls int
	createErr   error
	deleteErr   error
	createGate  chan struct{} // if set, CreateLike blocks until closed
	entered     chan struct{} // if set, receives a signal when CreateLike is entered
	liked       map[domain.MomentId]bool
}

func (m *mockLikeStorage) LikedMomentIDs(ctx context.Context, userId domain.UserId, momentIds []domain.MomentId) (map[domain.MomentId]bool, error) {
	out := map[domain.MomentId]bool{}
	for _, id := range momentIds {
		if m.liked[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *mockLikeStorage) CreateLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error {
	m.mu.Lock()
	m.createCalls++
	gate := m.createGate
	entered := m.entered
	err := m.createErr
	m.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (m *mockLikeStorage) DeleteLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	return m.deleteErr
}

func (m *mockLikeStorage) IsLiked(ctx context.Context, momentId domain.MomentId, userId domain.UserId) (bool, error) {
	return m.liked[momentId], nil
}

func (m *mockLikeStorage) CountLikes(ctx context.Context, momentId domain.MomentId) (int, error) {
	return 0, nil
}

func (m *mockLikeStorage) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls, m.deleteCalls
}

type mockMomentStorage struct {
	mu       sync.Mutex
	moments  []domain.Moment
	counts   map[domain.MomentId]int
	created  []domain.Moment
	momentId int64
}

func (m *mockMomentStorage) ListMoments(ctx context.Context, limit int) ([]domain.Moment, error) {
	return m.moments, nil
}

func (m *mockMomentStorage) GetMoment(ctx context.Context, id domain.MomentId) (domain.Moment, error) {
	for _, mm := range m.moments {
		if mm.Id.Int64() == id {
			return mm, nil
		}
	}
	return domain.Moment{}, e.NotFound
}

func (m *mockMomentStorage) CreateMoment(ctx context.Context, mm domain.Moment) (domain.Moment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.momentId++
	mm.Id = domain.FlexInt64(m.momentId)
	m.created = append(m.created, mm)
	return mm, nil
}

func (m *mockMomentStorage) SetLikeCount(ctx context.Context, id domain.MomentId, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[domain.MomentId]int{}
	}
	m.counts[id] = count
	return nil
}

func newToggler(storage *mockLikeStorage) (*LikeService, chan error) {
	svc := NewLikeService(storage, &mockMomentStorage{})
	settled := make(chan error, 8)
	svc.OnSettle(func(momentId domain.MomentId, userId domain.UserId, err error) {
		settled <- err
	})
	return svc, settled
}

func waitSettle(t *testing.T, settled chan error) error {
	t.Helper()
	select {
	case err := <-settled:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("toggle did not settle")
		return nil
	}
}

func TestToggleFlipsImmediately(t *testing.T) {
	storage := &mockLikeStorage{}
	svc, settled := newToggler(storage)

	liked, done := svc.Toggle(1, "u1")
	assert.True(t, liked)
	assert.False(t, done)

	require.NoError(t, waitSettle(t, settled))
	assert.True(t, svc.Settled(1, "u1"))
	assert.True(t, svc.Liked(1, "u1", false))

	creates, deletes := storage.calls()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, deletes)
}

func TestDoubleTapWhileInFlightIsIgnored(t *testing.T) {
	gate := make(chan struct{})
	storage := &mockLikeStorage{createGate: gate, entered: make(chan struct{}, 1)}
	svc, settled := newToggler(storage)

	liked, _ := svc.Toggle(1, "u1")
	assert.True(t, liked)
	<-storage.entered // first write is now in flight, blocked on the gate

	// two more taps land while the first write is still blocked; both are
	// ignored and report the pending state unchanged
	liked, _ = svc.Toggle(1, "u1")
	assert.True(t, liked)
	liked, _ = svc.Toggle(1, "u1")
	assert.True(t, liked)

	creates, deletes := storage.calls()
	assert.Equal(t, 1, creates, "only the first write should be in flight")
	assert.Equal(t, 0, deletes)

	close(gate)
	require.NoError(t, waitSettle(t, settled))

	creates, deletes = storage.calls()
	assert.Equal(t, 1, creates, "ignored taps must not issue extra writes")
	assert.Equal(t, 0, deletes)
	assert.True(t, svc.Liked(1, "u1", false))
	assert.True(t, svc.Settled(1, "u1"))
}

func TestSetWhileInFlightReconciles(t *testing.T) {
	gate := make(chan struct{})
	storage := &mockLikeStorage{createGate: gate, entered: make(chan struct{}, 1)}
	svc, settled := newToggler(storage)

	svc.Toggle(1, "u1")     // like, write blocks
	<-storage.entered       // wait until the write is actually in flight
	svc.Set(1, "u1", false) // explicit unlike while in flight

	close(gate)
	require.NoError(t, waitSettle(t, settled))

	// the settle loop issued a compensating delete after the create landed
	creates, deletes := storage.calls()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, deletes)
	assert.False(t, svc.Liked(1, "u1", false))
}

func TestFailedWriteRollsBack(t *testing.T) {
	storage := &mockLikeStorage{createErr: errors.New("store down")}
	svc, settled := newToggler(storage)

	liked, _ := svc.Toggle(1, "u1")
	assert.True(t, liked, "flip is optimistic even if the write will fail")

	err := waitSettle(t, settled)
	require.Error(t, err)

	assert.False(t, svc.Liked(1, "u1", false), "rolled back to confirmed state")
	assert.True(t, svc.Settled(1, "u1"))
}

func TestUnlikeRollsBackToLiked(t *testing.T) {
	storage := &mockLikeStorage{deleteErr: errors.New("store down")}
	svc, settled := newToggler(storage)

	svc.SeedConfirmed("u1", map[domain.MomentId]bool{1: true})

	liked, _ := svc.Toggle(1, "u1")
	assert.False(t, liked)

	require.Error(t, waitSettle(t, settled))
	assert.True(t, svc.Liked(1, "u1", true), "unlike failed, still liked")
}

func TestSetIsIdempotent(t *testing.T) {
	storage := &mockLikeStorage{}
	svc, settled := newToggler(storage)

	assert.True(t, svc.Set(1, "u1", true))
	require.NoError(t, waitSettle(t, settled))
	assert.False(t, svc.Set(1, "u1", true), "already liked, nothing to do")

	creates, deletes := storage.calls()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, deletes)

	assert.True(t, svc.Set(1, "u1", false))
	require.NoError(t, waitSettle(t, settled))
	_, deletes = storage.calls()
	assert.Equal(t, 1, deletes)
}

func TestUnlikedPairsEvictedOnceSettled(t *testing.T) {
	storage := &mockLikeStorage{}
	svc, settled := newToggler(storage)

	svc.Toggle(1, "u1") // like
	require.NoError(t, waitSettle(t, settled))
	svc.mu.Lock()
	_, tracked := svc.states[likeKey{1, "u1"}]
	svc.mu.Unlock()
	assert.True(t, tracked, "liked pair keeps its overlay entry")

	svc.Toggle(1, "u1") // unlike
	require.NoError(t, waitSettle(t, settled))
	svc.mu.Lock()
	_, tracked = svc.states[likeKey{1, "u1"}]
	svc.mu.Unlock()
	assert.False(t, tracked, "settled unliked pair matches the cold default")
	assert.False(t, svc.Liked(1, "u1", false))
	assert.True(t, svc.Settled(1, "u1"))
}

func TestSeedSkipsUnlikedPairs(t *testing.T) {
	svc, _ := newToggler(&mockLikeStorage{})

	svc.SeedConfirmed("u1", map[domain.MomentId]bool{1: true, 2: false})

	svc.mu.Lock()
	_, hasLiked := svc.states[likeKey{1, "u1"}]
	_, hasUnliked := svc.states[likeKey{2, "u1"}]
	svc.mu.Unlock()
	assert.True(t, hasLiked)
	assert.False(t, hasUnliked)
	assert.True(t, svc.Liked(1, "u1", false))
	assert.False(t, svc.Liked(2, "u1", false))
}

func TestSeedDoesNotClobberPendingToggle(t *testing.T) {
	gate := make(chan struct{})
	storage := &mockLikeStorage{createGate: gate}
	svc, settled := newToggler(storage)

	svc.Toggle(1, "u1") // desired true, write in flight

	// a stale feed read arrives while the write is pending
	svc.SeedConfirmed("u1", map[domain.MomentId]bool{1: false})
	assert.True(t, svc.Liked(1, "u1", false))

	close(gate)
	require.NoError(t, waitSettle(t, settled))
	assert.True(t, svc.Liked(1, "u1", false))
}
