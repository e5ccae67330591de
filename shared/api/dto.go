package api

import "github.com/xkailive-dev/xkailive/shared/domain"

// Request DTOs

type GuestLoginRequest struct {
	Name      string `json:"name" validate:"required,max=32"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

type CreateMomentRequest struct {
	ContentText   string `json:"content_text" validate:"required,max=2000"`
	ContentImgURL string `json:"content_img_url,omitempty" validate:"omitempty,url"`
}

type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required,max=500"`
	ParentCommentId *int64 `json:"parent_comment_id,omitempty"`
}

type ChatRequest struct {
	Text string `json:"text" validate:"required,max=200"`
}

type DanmakuRequest struct {
	Text string `json:"text" validate:"required,max=100"`
}

type GiftRequest struct {
	GiftName string `json:"gift_name" validate:"required,max=50"`
	Count    int    `json:"count" validate:"omitempty,min=1,max=99"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

type FeedResponse struct {
	Posts []domain.Post `json:"posts"`
}

type CommentsResponse struct {
	Comments []domain.Comment `json:"comments"`
}

// ToggleLikeResponse reports the optimistic state right after a toggle:
// Liked is the flag as the client should render it now, Settled tells
// whether the backing write already finished.
type ToggleLikeResponse struct {
	MomentId int64 `json:"moment_id"`
	Liked    bool  `json:"liked"`
	Settled  bool  `json:"settled"`
}
