// Package service holds the application logic between HTTP handlers and the
// remote store: feed composition, comment rules, guest identity, and the
// optimistic like state machine.
package service

import (
	"context"

	"github.com/xkailive-dev/xkailive/shared/domain"
)

// MomentStorage is the persistence surface the feed service needs.
type MomentStorage interface {
	ListMoments(ctx context.Context, limit int) ([]domain.Moment, error)
	GetMoment(ctx context.Context, id domain.MomentId) (domain.Moment, error)
	CreateMoment(ctx context.Context, m domain.Moment) (domain.Moment, error)
	SetLikeCount(ctx context.Context, id domain.MomentId, count int) error
}

// CommentStorage is the persistence surface the comment service needs.
type CommentStorage interface {
	ListTopLevelComments(ctx context.Context, momentId domain.MomentId) ([]domain.Comment, error)
	CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	SoftDeleteComment(ctx context.Context, commentId domain.CommentId, userId domain.UserId) error
}

// LikeStorage is the persistence surface the like toggler needs.
type LikeStorage interface {
	LikedMomentIDs(ctx context.Context, userId domain.UserId, momentIds []domain.MomentId) (map[domain.MomentId]bool, error)
	CreateLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error
	DeleteLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error
	IsLiked(ctx context.Context, momentId domain.MomentId, userId domain.UserId) (bool, error)
	CountLikes(ctx context.Context, momentId domain.MomentId) (int, error)
}
