package domain

import "time"

// Post is the render-facing view of a Moment: publish time already
// formatted for display and the current user's liked flag resolved.
type Post struct {
	Id          MomentId `json:"id"`
	UserName    string   `json:"user_name"`
	UserAvatar  string   `json:"user_avatar"`
	PublishTime string   `json:"publish_time"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"image_url,omitempty"`
	LikeCount   int      `json:"like_count"`
	IsLiked     bool     `json:"is_liked"`
}

// NewPost converts a stored Moment into its display form.
func NewPost(m Moment, isLiked bool, now time.Time) Post {
	return Post{
		Id:          m.Id.Int64(),
		UserName:    m.UserName,
		UserAvatar:  m.UserAvatarURL,
		PublishTime: DisplayPublishTime(m.PublishTime, now),
		Content:     m.ContentText,
		ImageURL:    m.ContentImgURL,
		LikeCount:   m.LikeCount,
		IsLiked:     isLiked,
	}
}
