package domain

import (
	"errors"
	"strings"
)

// ErrValidation is returned by service functions when a candidate transfer
// fails one or more field rules. The concrete error is a *ValidationError.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSchemaMismatch is returned when a tabular file does not carry exactly
// the columns of the active profile.
var ErrSchemaMismatch = errors.New("column schema mismatch")

// ErrMalformedRow is returned when a tabular row holds a value that cannot be
// decoded (bad date, non-numeric pax, unknown transfer type, ...).
var ErrMalformedRow = errors.New("malformed row")

// ErrEmptyInput is returned when a tabular file has no header row at all.
var ErrEmptyInput = errors.New("empty input")

// ErrArchiveDisabled is returned when an export archive is requested but no
// archive backend is configured. Handlers should map this to HTTP 404.
var ErrArchiveDisabled = errors.New("export archive not configured")

// ValidationError carries every failed rule for one candidate, in schema
// field order. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
