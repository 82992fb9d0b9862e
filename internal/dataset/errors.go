package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable marks a dataset that could not be read at all:
	// missing file, unreadable file or malformed delimited text.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrSchema marks a dataset that was read but lacks a required column
	// or carries a value of the wrong type.
	ErrSchema = errors.New("schema error")
)

// DataUnavailableError wraps the underlying read or parse failure.
type DataUnavailableError struct {
	Path string
	Err  error
}

func (e *DataUnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("data unavailable: %v", e.Err)
	}
	return fmt.Sprintf("data unavailable: %s: %v", e.Path, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// SchemaError describes a missing or mistyped column. Row is the 1-based
// line number in the source file, 0 for header problems.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema error: column %q line %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
