package display

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is shown wherever a value is missing.
const Placeholder = "-"

const (
	DateLayout     = "02 Jan 2006"
	DateTimeLayout = "02 Jan 2006 15:04"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders the date part in local time, or Placeholder for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Local().Format(DateLayout)
}

// FormatDateTime renders date and minutes in local time, or Placeholder for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Local().Format(DateTimeLayout)
}

// FormatDatePtr is FormatDate for optional values.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return FormatDate(*t)
}

// FormatDateTimePtr is FormatDateTime for optional values.
func FormatDateTimePtr(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return FormatDateTime(*t)
}

// ParseISO parses the API's date strings. ok is false for empty or unrecognised input.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateString formats a raw ISO string; bad or empty input yields Placeholder.
func FormatDateString(s string) string {
	t, ok := ParseISO(s)
	if !ok {
		return Placeholder
	}
	return FormatDate(t)
}

// FormatDateTimeString formats a raw ISO string; bad or empty input yields Placeholder.
func FormatDateTimeString(s string) string {
	t, ok := ParseISO(s)
	if !ok {
		return Placeholder
	}
	return FormatDateTime(t)
}

// RelativeAge renders "just now", "5 min ago", "3 h ago" or the date for older values.
func RelativeAge(t, now time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	default:
		return FormatDate(t)
	}
}
