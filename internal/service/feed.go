package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
	"github.com/xkailive-dev/xkailive/shared/logger"
)

const defaultFeedLimit = 50

// FeedService lists moments as display-ready posts and publishes new ones.
type FeedService struct {
	moments MomentStorage
	storage LikeStorage
	likes   *LikeService

	now func() time.Time
}

func NewFeedService(moments MomentStorage, storage LikeStorage, likes *LikeService) *FeedService {
	return &FeedService{
		moments: moments,
		storage: storage,
		likes:   likes,
		now:     time.Now,
	}
}

// List returns the feed for a user: newest first, publish times formatted,
// each post carrying the user's liked flag with any optimistic overlay
// applied on top of store truth.
func (s *FeedService) List(ctx context.Context, userId domain.UserId) ([]domain.Post, error) {
	moments, err := s.moments.ListMoments(ctx, defaultFeedLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]domain.MomentId, 0, len(moments))
	for _, m := range moments {
		if m.Id != 0 {
			ids = append(ids, m.Id.Int64())
		}
	}

	likedBaseline := map[domain.MomentId]bool{}
	if userId != "" && len(ids) > 0 {
		likedBaseline, err = s.storage.LikedMomentIDs(ctx, userId, ids)
		if err != nil {
			// the feed is still useful without liked flags
			logger.Log.Warn("liked lookup failed, serving feed without flags", "error", err)
			likedBaseline = map[domain.MomentId]bool{}
		} else {
			s.likes.SeedConfirmed(userId, likedBaseline)
		}
	}

	now := s.now()
	posts := make([]domain.Post, 0, len(moments))
	for _, m := range moments {
		id := m.Id.Int64()
		baseline := likedBaseline[id]
		liked := baseline
		if userId != "" {
			liked = s.likes.Liked(id, userId, baseline)
		}

		post := domain.NewPost(m, liked, now)
		// keep the visible counter consistent with an unsettled toggle
		if liked != baseline {
			if liked {
				post.LikeCount++
			} else if post.LikeCount > 0 {
				post.LikeCount--
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Publish stores a new moment authored by the user and returns it as a post.
func (s *FeedService) Publish(ctx context.Context, user domain.User, text, imgURL string) (domain.Post, error) {
	text = SanitizeText(text)
	if text == "" {
		return domain.Post{}, &e.ErrorWithStatusCode{Message: "Moment text is empty", StatusCode: 422}
	}

	m := domain.Moment{
		UserName:      user.Name,
		UserAvatarURL: user.AvatarURL,
		PublishTime:   domain.FormatWireTime(s.now()),
		ContentText:   text,
		ContentImgURL: imgURL,
	}

	stored, err := s.moments.CreateMoment(ctx, m)
	if err != nil {
		return domain.Post{}, fmt.Errorf("publish moment: %w", err)
	}
	return domain.NewPost(stored, false, s.now()), nil
}
