package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup from user-submitted text. Moments, comments,
// chat and danmaku are plain text; anything tag-shaped is attacker input.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText cleans one line of user text for storage or broadcast.
func SanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
