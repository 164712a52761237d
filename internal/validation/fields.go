package validation

import (
	"fmt"
	"unicode/utf8"
)

// Length bounds for user-supplied text fields.
const (
	TitleMinLen    = 3
	TitleMaxLen    = 255
	BodyMinLen     = 200
	BodyMaxLen     = 5000
	CommentMinLen  = 3
	CommentMaxLen  = 255
	ReasonMinLen   = 15
	ReasonMaxLen   = 1000
	MessageMinLen  = 3
	MessageMaxLen  = 1000
	HandleMinLen   = 3
	HandleMaxLen   = 20
	PasswordMinLen = 8
	PasswordMaxLen = 128
)

// Errors collects per-field validation failures. The zero value is usable.
type Errors map[string]string

// Add records a failure for a field; the first failure per field wins.
func (e Errors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// Empty reports whether no failures were recorded.
func (e Errors) Empty() bool { return len(e) == 0 }

// CheckLength validates a text field against rune-count bounds.
func (e Errors) CheckLength(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min {
		e.Add(field, fmt.Sprintf("must be at least %d characters", min))
		return
	}
	if max > 0 && n > max {
		e.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// CheckEmoji validates that a value is a single emoji.
func (e Errors) CheckEmoji(field, value string) {
	if !IsEmoji(value) {
		e.Add(field, fmt.Sprintf("%q is not an emoji", value))
	}
}

// CheckRequired validates that a value is present.
func (e Errors) CheckRequired(field, value string) {
	if value == "" {
		e.Add(field, "is required")
	}
}
