package rest

import (
	"context"
	"fmt"

	"github.com/xkailive-dev/xkailive/shared/domain"
)

// ListTopLevelComments returns the live top-level comments of a moment,
// oldest first. Soft-deleted rows and replies are filtered at the store so
// clients never see them.
func (s *Storage) ListTopLevelComments(ctx context.Context, momentId domain.MomentId) ([]domain.Comment, error) {
	resp, err := s.client.From(s.commentsTable).
		Select("*").
		Eq("moment_id", momentId).
		Eq("deleted", false).
		Is("parent_comment_id", "null").
		Order("created_at", true).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments for moment %d: %w", momentId, err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("list comments for moment %d: %w", momentId, err)
	}

	var comments []domain.Comment
	if err := resp.JSON(&comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// CreateComment inserts a comment and returns the stored row.
func (s *Storage) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	resp, err := s.client.From(s.commentsTable).Single().ExecuteInsert(ctx, c)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if err := resp.Err(); err != nil {
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	var stored domain.Comment
	if err := resp.JSON(&stored); err != nil {
		return domain.Comment{}, fmt.Errorf("decode created comment: %w", err)
	}
	return stored, nil
}

// SoftDeleteComment flips the deleted flag; the row itself stays.
func (s *Storage) SoftDeleteComment(ctx context.Context, commentId domain.CommentId, userId domain.UserId) error {
	resp, err := s.client.From(s.commentsTable).
		Eq("id", commentId).
		Eq("user_id", userId).
		ExecuteUpdate(ctx, map[string]bool{"deleted": true})
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", commentId, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("delete comment %d: %w", commentId, err)
	}
	return nil
}

// CountComments returns the number of live top-level comments on a moment
// as a head count.
func (s *Storage) CountComments(ctx context.Context, momentId domain.MomentId) (int, error) {
	count, err := s.client.From(s.commentsTable).
		Eq("moment_id", momentId).
		Eq("deleted", false).
		Is("parent_comment_id", "null").
		ExecuteCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
