// internal/config/errors.go
//
// Configuration Error type.
//
// Every failure the loader can produce is a *Error naming the record and the
// env key at fault.  The cause is one of two sentinels, so callers can ask
// `errors.Is(err, config.ErrMissing)` without parsing strings.  Several field
// errors from one Load are combined with multierr.

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing marks a required key that is absent from every source.
	ErrMissing = errors.New("required value not set")

	// ErrMalformed marks a value that failed type coercion or base64
	// decoding, or that a consumer rejected (a PORT no socket accepts).
	ErrMalformed = errors.New("malformed value")
)

// Error is the single configuration error kind.
type Error struct {
	Record string // "app", "ai", "database", "auth", or "source"
	Field  string // env key, e.g. DB_PORT_SQL
	Err    error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("config: %s.%s: %v", e.Record, e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func missing(record, field string) *Error {
	return &Error{Record: record, Field: field, Err: ErrMissing}
}

func malformed(record, field string, cause error) *Error {
	return &Error{Record: record, Field: field, Err: fmt.Errorf("%w: %v", ErrMalformed, cause)}
}
