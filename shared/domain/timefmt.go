package domain

import (
	"fmt"
	"time"
)

// wireTimeLayout is the timestamp encoding used by the remote store:
// ISO-8601 with fractional seconds.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatWireTime encodes a timestamp the way the remote store expects it.
func FormatWireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

// ParseWireTime decodes a remote timestamp. Fractional seconds and offset
// variants both occur in stored rows.
func ParseWireTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse wire time %q", s)
}

// FormatRelativeTime renders a timestamp for display: "just now" within a
// minute, "N minutes ago" within an hour, otherwise a short "M-D HH:mm".
func FormatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	default:
		local := t.In(now.Location())
		return fmt.Sprintf("%d-%d %02d:%02d", local.Month(), local.Day(), local.Hour(), local.Minute())
	}
}

// DisplayPublishTime formats a wire timestamp for the client. Unparseable
// values are shown as-is, matching how stored rows predating the current
// format are handled.
func DisplayPublishTime(wire string, now time.Time) string {
	t, err := ParseWireTime(wire)
	if err != nil {
		return wire
	}
	return FormatRelativeTime(t, now)
}
