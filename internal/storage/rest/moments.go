package rest

import (
	"context"
	"fmt"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
)

// ListMoments returns the newest moments first.
func (s *Storage) ListMoments(ctx context.Context, limit int) ([]domain.Moment, error) {
	q := s.client.From(s.momentsTable).
		Select("*").
		Order("publish_time", false)
	if limit > 0 {
		q = q.Limit(limit)
	}

	resp, err := q.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}

	var moments []domain.Moment
	if err := resp.JSON(&moments); err != nil {
		return nil, fmt.Errorf("decode moments: %w", err)
	}
	return moments, nil
}

// GetMoment fetches a single moment by id.
func (s *Storage) GetMoment(ctx context.Context, id domain.MomentId) (domain.Moment, error) {
	resp, err := s.client.From(s.momentsTable).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx)
	if err != nil {
		return domain.Moment{}, fmt.Errorf("get moment %d: %w", id, err)
	}
	if resp.StatusCode == 404 || resp.StatusCode == 406 {
		// PostgREST answers 406 when a Single() query matched no row
		return domain.Moment{}, e.NotFound
	}
	if err := resp.Err(); err != nil {
		return domain.Moment{}, fmt.Errorf("get moment %d: %w", id, err)
	}

	var m domain.Moment
	if err := resp.JSON(&m); err != nil {
		return domain.Moment{}, fmt.Errorf("decode moment: %w", err)
	}
	return m, nil
}

// CreateMoment inserts a moment and returns the stored row with its
// assigned id.
func (s *Storage) CreateMoment(ctx context.Context, m domain.Moment) (domain.Moment, error) {
	resp, err := s.client.From(s.momentsTable).Single().ExecuteInsert(ctx, m)
	if err != nil {
		return domain.Moment{}, fmt.Errorf("create moment: %w", err)
	}
	if err := resp.Err(); err != nil {
		return domain.Moment{}, fmt.Errorf("create moment: %w", err)
	}

	var stored domain.Moment
	if err := resp.JSON(&stored); err != nil {
		return domain.Moment{}, fmt.Errorf("decode created moment: %w", err)
	}
	return stored, nil
}

// SetLikeCount overwrites the denormalized like counter of a moment.
func (s *Storage) SetLikeCount(ctx context.Context, id domain.MomentId, count int) error {
	resp, err := s.client.From(s.momentsTable).
		Eq("id", id).
		ExecuteUpdate(ctx, map[string]int{"like_count": count})
	if err != nil {
		return fmt.Errorf("set like count for moment %d: %w", id, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("set like count for moment %d: %w", id, err)
	}
	return nil
}
