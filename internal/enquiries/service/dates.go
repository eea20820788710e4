package service

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
}

// parseDate accepts the layouts the staff UI has sent over time and falls
// back to now for anything else.
func parseDate(raw string, now time.Time) time.Time {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return now
}
