// Package forms holds the submission schemas for rooms, accounts and
// messages. A form binds raw request values, validates them and keeps
// field-level errors for re-rendering; persisting is left to services.
package forms

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalid is returned by services when a submitted form fails validation.
var ErrInvalid = errors.New("invalid submission")

// Errors maps a field name to its validation messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Any() bool {
	return len(e) > 0
}

func required(errs Errors, field, value string) bool {
	if value == "" {
		errs.Add(field, "This field is required.")
		return false
	}
	return true
}

func maxLength(errs Errors, field, value string, n int) {
	if l := utf8.RuneCountInString(value); l > n {
		errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", n, l))
	}
}
