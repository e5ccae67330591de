package domain

// Comment is a row of the remote `comments` table. Deletion is a soft flag:
// deleted rows stay in storage and are excluded by the read predicate.
// ParentCommentId threads replies; top-level listings filter it to null.
type Comment struct {
	Id              FlexInt64  `json:"id,omitempty"`
	MomentId        FlexInt64  `json:"moment_id"`
	UserId          UserId     `json:"user_id"`
	UserName        string     `json:"user_name"`
	UserAvatarURL   string     `json:"user_avatar_url,omitempty"`
	Content         string     `json:"content"`
	CreatedAt       string     `json:"created_at,omitempty"`
	UpdatedAt       string     `json:"updated_at,omitempty"`
	ParentCommentId *FlexInt64 `json:"parent_comment_id,omitempty"`
	Deleted         bool       `json:"deleted"`
}
