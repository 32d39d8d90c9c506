package registry

import (
	"fmt"
	"time"
)

// DateTimeLayout is the layout used to render timestamps for display
const DateTimeLayout = "2006-01-02 15:04:05"

// HeartbeatAge renders how long ago the last heartbeat was received,
// rounded down to the largest whole unit.
func HeartbeatAge(now, last time.Time) string {
	if last.IsZero() {
		return ""
	}

	seconds := int64(now.Sub(last) / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}

// FormatDateTime renders t in local time, or "" for the zero time
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateTimeLayout)
}
