package app

import (
	"fmt"
	"strings"
	"time"
)

var dueLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// ParseDue reads a due date typed by a user, in local time. A date without a
// time means the end of that day.
func ParseDue(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: due date is required", ErrInvalidTask)
	}
	for _, layout := range dueLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, time.Local)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 0, 0, time.Local)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid due date %q, use YYYY-MM-DD or YYYY-MM-DD HH:MM", ErrInvalidTask, trimmed)
}
