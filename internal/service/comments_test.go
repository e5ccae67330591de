package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
)

type mockCommentStorage struct {
	mu       sync.Mutex
	comments []domain.Comment
	deleted  []domain.CommentId
	nextId   int64
}

func (m *mockCommentStorage) ListTopLevelComments(ctx context.Context, momentId domain.MomentId) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.comments {
		if c.MomentId.Int64() == momentId && !c.Deleted && c.ParentCommentId == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentStorage) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextId++
	c.Id = domain.FlexInt64(m.nextId)
	m.comments = append(m.comments, c)
	return c, nil
}

func (m *mockCommentStorage) SoftDeleteComment(ctx context.Context, commentId domain.CommentId, userId domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, commentId)
	return nil
}

func newCommentFixture(moments []domain.Moment) (*CommentService, *mockCommentStorage) {
	store := &mockCommentStorage{}
	svc := NewCommentService(store, &mockMomentStorage{moments: moments})
	svc.now = fixedNow
	return svc, store
}

func TestCreateCommentOnExistingMoment(t *testing.T) {
	svc, store := newCommentFixture([]domain.Moment{{Id: 5, UserName: "a"}})

	c, err := svc.Create(context.Background(), domain.User{Id: "u1", Name: "guest"}, 5, "  nice one  ", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.Id.Int64())
	assert.Equal(t, "nice one", c.Content)
	assert.Equal(t, "u1", c.UserId)
	assert.Equal(t, "2025-06-10T12:00:00.000Z", c.CreatedAt)
	assert.Nil(t, c.ParentCommentId)
	require.Len(t, store.comments, 1)
}

func TestCreateReplyCarriesParentId(t *testing.T) {
	svc, _ := newCommentFixture([]domain.Moment{{Id: 5}})

	parent := domain.CommentId(3)
	c, err := svc.Create(context.Background(), domain.User{Id: "u1", Name: "guest"}, 5, "reply", &parent)
	require.NoError(t, err)
	require.NotNil(t, c.ParentCommentId)
	assert.Equal(t, int64(3), c.ParentCommentId.Int64())
}

func TestCreateCommentMomentNotFound(t *testing.T) {
	svc, _ := newCommentFixture(nil)

	_, err := svc.Create(context.Background(), domain.User{Id: "u1", Name: "guest"}, 99, "hi", nil)
	require.Error(t, err)

	var statusErr *e.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestCreateCommentRejectsEmptyContent(t *testing.T) {
	svc, _ := newCommentFixture([]domain.Moment{{Id: 5}})

	_, err := svc.Create(context.Background(), domain.User{Id: "u1", Name: "guest"}, 5, "<i></i>", nil)
	require.Error(t, err)

	var statusErr *e.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 422, statusErr.StatusCode)
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	svc, _ := newCommentFixture(nil)

	comments, err := svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestDeleteOwnComment(t *testing.T) {
	svc, store := newCommentFixture([]domain.Moment{{Id: 5}})

	require.NoError(t, svc.Delete(context.Background(), domain.User{Id: "u1"}, 7))
	assert.Equal(t, []domain.CommentId{7}, store.deleted)
}
