package domain

// Moment is a feed post as stored in the remote `moments` table.
// Id stays 0 until the store assigns one; omitempty keeps it out of insert
// payloads. PublishTime is kept in wire encoding (ISO-8601 with fractional
// seconds) and only formatted at the display boundary.
type Moment struct {
	Id            FlexInt64 `json:"id,omitempty"`
	UserName      string    `json:"user_name"`
	UserAvatarURL string    `json:"user_avatar_url,omitempty"`
	PublishTime   string    `json:"publish_time"`
	ContentText   string    `json:"content_text"`
	ContentImgURL string    `json:"content_img_url,omitempty"`
	LikeCount     int       `json:"like_count,omitempty"`
}
