package report

import (
	"fmt"
	"strings"
)

// DurationFormatter turns a second count into a display string.
type DurationFormatter func(seconds int64) string

// Humanize formats seconds as whole hours and minutes, e.g. "1h 1m".
// Zero is "0m" and anything under a minute is "<1m".
func Humanize(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}
	if seconds < 60 {
		return "<1m"
	}
	return HumanizeBare(seconds)
}

// HumanizeBare is the legacy formatter: units with a zero value are dropped,
// so anything under a minute renders as an empty string.
func HumanizeBare(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
