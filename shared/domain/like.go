package domain

// Like joins a user to a moment. The store enforces uniqueness on
// (moment_id, user_id); a duplicate insert is treated as success upstream.
//
// Historical schema variants used UUID ids here. This codebase standardizes
// on numeric 64-bit ids, matching moments and comments; the permissive
// FlexInt64 decoding still accepts rows written with string-encoded ids.
type Like struct {
	Id        FlexInt64 `json:"id,omitempty"`
	MomentId  FlexInt64 `json:"moment_id"`
	UserId    UserId    `json:"user_id"`
	CreatedAt string    `json:"created_at,omitempty"`
}
