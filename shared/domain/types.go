package domain

type (
	UserId   = string // remote store keys likes/comments by an opaque string user id
	UserName = string

	MomentId  = int64
	CommentId = int64
)

// User is the client identity attached to a session token. Identity is
// issued by the gateway; the remote store only ever sees the opaque id.
type User struct {
	Id        UserId   `json:"id"`
	Name      UserName `json:"name"`
	AvatarURL string   `json:"avatar_url,omitempty"`
}
