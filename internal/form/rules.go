package form

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ValidationErrors maps a field name to its inline message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

// OrNil returns nil when there are no messages, so callers can return it as an error.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Rule checks one value and returns the inline message, or "" when valid.
type Rule[V any] func(V) string

// Check applies rules in order and keeps the first message for field.
func Check[V any](errs ValidationErrors, field string, value V, rules ...Rule[V]) {
	if _, already := errs[field]; already {
		return
	}
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			errs[field] = msg
			return
		}
	}
}

func Required() Rule[string] {
	return func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "is required"
		}
		return ""
	}
}

// MinLength counts characters after trimming surrounding whitespace.
func MinLength(n int) Rule[string] {
	return func(s string) string {
		if utf8.RuneCountInString(strings.TrimSpace(s)) < n {
			return fmt.Sprintf("must be at least %d characters", n)
		}
		return ""
	}
}

func MaxLength(n int) Rule[string] {
	return func(s string) string {
		if utf8.RuneCountInString(strings.TrimSpace(s)) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}
		return ""
	}
}

// OneOf accepts any of the given values, compared case-insensitively.
func OneOf(values ...string) Rule[string] {
	return func(s string) string {
		for _, v := range values {
			if strings.EqualFold(strings.TrimSpace(s), v) {
				return ""
			}
		}
		return fmt.Sprintf("must be one of %s", strings.Join(values, ", "))
	}
}

func IntRange(min, max int) Rule[int] {
	return func(n int) string {
		if n < min || n > max {
			return fmt.Sprintf("must be between %d and %d", min, max)
		}
		return ""
	}
}

func FloatRange(min, max float64) Rule[float64] {
	return func(f float64) string {
		if f < min || f > max {
			return fmt.Sprintf("must be between %g and %g", min, max)
		}
		return ""
	}
}

// Positive is used for ids picked from a list; 0 means nothing was selected.
func Positive() Rule[int64] {
	return func(n int64) string {
		if n <= 0 {
			return "must be selected"
		}
		return ""
	}
}

// Optional skips rule when the value is absent.
func Optional[V any](rule Rule[V]) Rule[*V] {
	return func(v *V) string {
		if v == nil {
			return ""
		}
		return rule(*v)
	}
}
