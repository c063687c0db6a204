package conduit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError is returned when the API rejects a request with field-keyed messages
type ValidationError struct {
	StatusCode int
	Errors     map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (status %d): %s", e.StatusCode, strings.Join(e.Messages(), "; "))
}

// Messages flattens the field map into "field message" lines, sorted by field
func (e *ValidationError) Messages() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var lines []string
	for _, field := range fields {
		for _, msg := range e.Errors[field] {
			lines = append(lines, field+" "+msg)
		}
	}
	return lines
}

// StatusError is returned for any other non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Body)
}

// ValidationErrors extracts the field map from err, if it wraps a ValidationError
func ValidationErrors(err error) (map[string][]string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Errors, true
	}
	return nil, false
}
