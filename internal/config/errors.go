package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a missing configuration file. Callers that tolerate an
// absent file use ReadOptional; everyone else surfaces this.
var ErrNotFound = errors.New("configuration file not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParseError marks malformed JSON content. It is never silently defaulted.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError carries the full list of field-level violations that made
// a configuration unwritable.
type ValidationError struct {
	Path   string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.String()
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Path, strings.Join(msgs, "; "))
}
