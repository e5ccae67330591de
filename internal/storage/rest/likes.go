package rest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xkailive-dev/xkailive/internal/supabase"
	"github.com/xkailive-dev/xkailive/shared/domain"
)

// LikedMomentIDs resolves which of the given moments the user has liked,
// in one batched query.
func (s *Storage) LikedMomentIDs(ctx context.Context, userId domain.UserId, momentIds []domain.MomentId) (map[domain.MomentId]bool, error) {
	liked := make(map[domain.MomentId]bool, len(momentIds))
	if len(momentIds) == 0 {
		return liked, nil
	}

	ids := make([]string, len(momentIds))
	for i, id := range momentIds {
		ids[i] = strconv.FormatInt(id, 10)
	}

	resp, err := s.client.From(s.likesTable).
		Select("moment_id").
		Eq("user_id", userId).
		In("moment_id", ids).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	var rows []struct {
		MomentId domain.FlexInt64 `json:"moment_id"`
	}
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	for _, row := range rows {
		liked[row.MomentId.Int64()] = true
	}
	return liked, nil
}

// CreateLike records a like. A duplicate (the pair already exists) counts
// as success: the end state the caller wanted is already there.
func (s *Storage) CreateLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error {
	like := domain.Like{
		MomentId: domain.FlexInt64(momentId),
		UserId:   userId,
	}
	resp, err := s.client.From(s.likesTable).ExecuteInsert(ctx, like)
	if err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	if err := resp.Err(); err != nil {
		if supabase.IsDuplicateErr(err) {
			return nil
		}
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// DeleteLike removes a like. Deleting a row that does not exist is a no-op
// at the store, so unlike is idempotent too.
func (s *Storage) DeleteLike(ctx context.Context, momentId domain.MomentId, userId domain.UserId) error {
	resp, err := s.client.From(s.likesTable).
		Eq("moment_id", momentId).
		Eq("user_id", userId).
		ExecuteDelete(ctx)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// IsLiked checks a single (moment, user) pair.
func (s *Storage) IsLiked(ctx context.Context, momentId domain.MomentId, userId domain.UserId) (bool, error) {
	resp, err := s.client.From(s.likesTable).
		Select("id").
		Eq("moment_id", momentId).
		Eq("user_id", userId).
		Limit(1).
		Execute(ctx)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	if err := resp.Err(); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	var rows []domain.Like
	if err := resp.JSON(&rows); err != nil {
		return false, fmt.Errorf("decode like: %w", err)
	}
	return len(rows) > 0, nil
}

// CountLikes returns the number of likes on a moment. A head count: only
// the total comes back, never the rows.
func (s *Storage) CountLikes(ctx context.Context, momentId domain.MomentId) (int, error) {
	count, err := s.client.From(s.likesTable).
		Eq("moment_id", momentId).
		ExecuteCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
