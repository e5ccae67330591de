package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
)

// CommentService lists and writes comments on moments.
type CommentService struct {
	storage CommentStorage
	moments MomentStorage

	now func() time.Time
}

func NewCommentService(storage CommentStorage, moments MomentStorage) *CommentService {
	return &CommentService{
		storage: storage,
		moments: moments,
		now:     time.Now,
	}
}

// List returns the live top-level comments of a moment, oldest first.
// Ordering and filtering happen at the store; the service trusts them.
func (s *CommentService) List(ctx context.Context, momentId domain.MomentId) ([]domain.Comment, error) {
	comments, err := s.storage.ListTopLevelComments(ctx, momentId)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// Create posts a comment. The target moment must exist; replies carry the
// parent comment id through untouched.
func (s *CommentService) Create(ctx context.Context, user domain.User, momentId domain.MomentId, content string, parentId *domain.CommentId) (domain.Comment, error) {
	content = SanitizeText(content)
	if content == "" {
		return domain.Comment{}, &e.ErrorWithStatusCode{Message: "Comment is empty", StatusCode: 422}
	}

	if _, err := s.moments.GetMoment(ctx, momentId); err != nil {
		if err == e.NotFound {
			return domain.Comment{}, &e.ErrorWithStatusCode{Message: "Moment not found", StatusCode: 404}
		}
		return domain.Comment{}, fmt.Errorf("check moment %d: %w", momentId, err)
	}

	c := domain.Comment{
		MomentId:      domain.FlexInt64(momentId),
		UserId:        user.Id,
		UserName:      user.Name,
		UserAvatarURL: user.AvatarURL,
		Content:       content,
		CreatedAt:     domain.FormatWireTime(s.now()),
	}
	if parentId != nil {
		p := domain.FlexInt64(*parentId)
		c.ParentCommentId = &p
	}

	stored, err := s.storage.CreateComment(ctx, c)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return stored, nil
}

// Delete soft-deletes the user's own comment. The store predicate includes
// the user id, so deleting someone else's comment is a silent no-op there;
// authorization still lives here in one place.
func (s *CommentService) Delete(ctx context.Context, user domain.User, commentId domain.CommentId) error {
	if err := s.storage.SoftDeleteComment(ctx, commentId, user.Id); err != nil {
		return fmt.Errorf("delete comment %d: %w", commentId, err)
	}
	return nil
}
