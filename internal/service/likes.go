package service

import (
	"context"
	"sync"
	"time"

	"github.com/xkailive-dev/xkailive/shared/domain"
	"github.com/xkailive-dev/xkailive/shared/logger"
)

const persistTimeout = 10 * time.Second

type likeKey struct {
	MomentId domain.MomentId
	UserId   domain.UserId
}

// likeState tracks one (moment, user) pair through optimistic toggling.
// confirmed is the last state the store acknowledged, desired is what the
// user most recently asked for. While a write is in flight taps are
// ignored; only explicit Set calls move desired, and the settle loop
// reconciles until desired and confirmed match.
type likeState struct {
	confirmed bool
	desired   bool
	inFlight  bool
}

// LikeService implements optimistic like toggling. A toggle answers
// immediately with the flipped state and persists in the background; at most
// one write per (moment, user) is in flight at any time. On a failed write
// the pair rolls back to its last confirmed state.
type LikeService struct {
	storage LikeStorage
	moments MomentStorage

	mu     sync.Mutex
	states map[likeKey]*likeState

	// settleHook fires after each persistence attempt, with the error if it
	// failed. Tests hang assertions off it.
	settleHook func(momentId domain.MomentId, userId domain.UserId, err error)
}

func NewLikeService(storage LikeStorage, moments MomentStorage) *LikeService {
	return &LikeService{
		storage: storage,
		moments: moments,
		states:  make(map[likeKey]*likeState),
	}
}

func (s *LikeService) OnSettle(hook func(momentId domain.MomentId, userId domain.UserId, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleHook = hook
}

// SeedConfirmed records store truth obtained from a feed listing. Pairs with
// a pending or unsettled toggle are left alone so the overlay is not
// clobbered by a stale read. Unliked pairs match the cold default and take
// no entry at all.
func (s *LikeService) SeedConfirmed(userId domain.UserId, liked map[domain.MomentId]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for momentId, isLiked := range liked {
		key := likeKey{momentId, userId}
		st, ok := s.states[key]
		if !ok {
			if isLiked {
				s.states[key] = &likeState{confirmed: true, desired: true}
			}
			continue
		}
		if st.inFlight || st.desired != st.confirmed {
			continue
		}
		if !isLiked {
			delete(s.states, key)
			continue
		}
		st.confirmed = true
		st.desired = true
	}
}

// Liked returns the state as the user should see it right now: the overlay
// if one exists, otherwise the given store baseline.
func (s *LikeService) Liked(momentId domain.MomentId, userId domain.UserId, baseline bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[likeKey{momentId, userId}]; ok {
		return st.desired
	}
	return baseline
}

// Settled reports whether the pair has no write in flight and no divergence
// between desired and confirmed state.
func (s *LikeService) Settled(momentId domain.MomentId, userId domain.UserId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[likeKey{momentId, userId}]
	if !ok {
		return true
	}
	return !st.inFlight && st.desired == st.confirmed
}

// Toggle flips the like state for the pair and returns the flipped value
// without waiting on the store. A tap while a write is pending for the
// pair is ignored and just reports the current state, so a rapid
// double-tap yields exactly one write. A pair never seen before is
// assumed not-liked; feed listings seed real baselines, and the store
// treating a duplicate like as success makes the cold case converge
// anyway.
func (s *LikeService) Toggle(momentId domain.MomentId, userId domain.UserId) (liked bool, settled bool) {
	key := likeKey{momentId, userId}

	s.mu.Lock()
	st, ok := s.states[key]
	if !ok {
		st = &likeState{}
		s.states[key] = st
	}
	if st.inFlight {
		liked = st.desired
		s.mu.Unlock()
		return liked, false
	}
	st.desired = !st.desired
	liked = st.desired
	st.inFlight = true
	s.mu.Unlock()

	go s.settle(key)
	return liked, false
}

// Set moves the pair to an explicit state instead of flipping it. A no-op
// when desired already matches; otherwise it behaves like Toggle.
func (s *LikeService) Set(momentId domain.MomentId, userId domain.UserId, liked bool) (changed bool) {
	key := likeKey{momentId, userId}

	s.mu.Lock()
	st, ok := s.states[key]
	if !ok {
		if !liked {
			// cold pair already matches the not-liked default
			s.mu.Unlock()
			return false
		}
		st = &likeState{}
		s.states[key] = st
	}
	if st.desired == liked {
		s.mu.Unlock()
		return false
	}
	st.desired = liked
	if st.inFlight {
		s.mu.Unlock()
		return true
	}
	st.inFlight = true
	s.mu.Unlock()

	go s.settle(key)
	return true
}

// settle drives the pair's store state towards desired. It loops because
// an explicit Set may move desired while a write is in flight; it stops
// when the two match or a write fails. Pairs that come to rest unliked
// match the cold default, so their entries are dropped rather than kept
// for the life of the process.
func (s *LikeService) settle(key likeKey) {
	for {
		s.mu.Lock()
		st := s.states[key]
		if st.desired == st.confirmed {
			st.inFlight = false
			if !st.confirmed {
				delete(s.states, key)
			}
			s.mu.Unlock()
			s.notifySettle(key, nil)
			return
		}
		target := st.desired
		s.mu.Unlock()

		err := s.persist(key, target)

		s.mu.Lock()
		if err != nil {
			st.desired = st.confirmed
			st.inFlight = false
			if !st.confirmed {
				delete(s.states, key)
			}
			s.mu.Unlock()
			logger.Log.Error("like toggle rollback",
				"moment_id", key.MomentId, "user_id", key.UserId, "error", err)
			s.notifySettle(key, err)
			return
		}
		st.confirmed = target
		s.mu.Unlock()

		s.refreshCount(key.MomentId)
	}
}

func (s *LikeService) persist(key likeKey, target bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if target {
		return s.storage.CreateLike(ctx, key.MomentId, key.UserId)
	}
	return s.storage.DeleteLike(ctx, key.MomentId, key.UserId)
}

// refreshCount recomputes the denormalized like counter. Best effort: a
// failure here leaves the counter stale, not the like itself.
func (s *LikeService) refreshCount(momentId domain.MomentId) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	count, err := s.storage.CountLikes(ctx, momentId)
	if err != nil {
		logger.Log.Warn("like count refresh failed", "moment_id", momentId, "error", err)
		return
	}
	if err := s.moments.SetLikeCount(ctx, momentId, count); err != nil {
		logger.Log.Warn("like count write failed", "moment_id", momentId, "error", err)
	}
}

func (s *LikeService) notifySettle(key likeKey, err error) {
	s.mu.Lock()
	hook := s.settleHook
	s.mu.Unlock()
	if hook != nil {
		hook(key.MomentId, key.UserId, err)
	}
}
