package timevar

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// basicLayouts are the ISO 8601 basic forms, which dateparse reads as
// plain numbers.
var basicLayouts = []string{
	"20060102T150405Z0700",
	"20060102T150405Z07:00",
	"20060102T1504Z0700",
	"20060102T1504Z07:00",
	"20060102T150405",
	"20060102T1504",
	"20060102T15",
}

// ParseTime parses a reference time. Times without a zone are taken
// in the local zone.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range basicLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrBadTime, s, err)
	}
	return t, nil
}
