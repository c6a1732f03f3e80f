package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a request that failed field validation.
// Fields lists every missing field when more than one is known.
type ValidationError struct {
	Field   string
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 1 {
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func missing(fields ...string) *ValidationError {
	return &ValidationError{Field: fields[0], Fields: fields}
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Fields: []string{field}, Message: fmt.Sprintf(format, args...)}
}

// FormValues is the flattened first-value view of a multipart form.
type FormValues map[string]string

// Has reports whether key was sent, even if blank.
func (f FormValues) Has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f FormValues) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// SplitList turns "red, blue,,green" into [red blue green].
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
