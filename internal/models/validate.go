package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ValidationErrors collects constraint violations keyed by field name.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message against field.
func (v ValidationErrors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Err returns nil when nothing was recorded, so callers can `return v.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidation unwraps err into ValidationErrors when it is one.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// FieldError builds a single-field ValidationErrors.
func FieldError(field, msg string) error {
	return ValidationErrors{field: {msg}}
}

func (v ValidationErrors) requireText(field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "this field is required")
		return
	}
	v.maxText(field, value, maxLen)
}

func (v ValidationErrors) maxText(field, value string, maxLen int) {
	if n := utf8.RuneCountInString(value); n > maxLen {
		v.Add(field, fmt.Sprintf("ensure this value has at most %d characters (it has %d)", maxLen, n))
	}
}

func (v ValidationErrors) requireID(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "this field is required")
	}
}

func (v ValidationErrors) between(field string, value, min, max int) {
	if value < min {
		v.Add(field, fmt.Sprintf("ensure this value is greater than or equal to %d", min))
	}
	if value > max {
		v.Add(field, fmt.Sprintf("ensure this value is less than or equal to %d", max))
	}
}
