package capture

import (
	"errors"
	"fmt"
)

// Platform error names reported with acquisition failures. Both denial
// spellings exist in the wild; Classify folds them together.
const (
	NameNotAllowed       = "NotAllowedError"
	NamePermissionDenied = "PermissionDeniedError"
	NameNotReadable      = "NotReadableError"
)

// Code is a stable classification of an acquisition failure.
type Code string

const (
	CodePermissionDenied Code = "permission-denied"
	CodeUnknown          Code = "unknown"
)

// Error is an acquisition failure carrying the platform-reported error name.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return e.Name
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps a platform error name to a Code. Exact match only; anything
// unrecognized is CodeUnknown.
func Classify(name string) Code {
	switch name {
	case NameNotAllowed, NamePermissionDenied:
		return CodePermissionDenied
	default:
		return CodeUnknown
	}
}

// ClassifyError classifies err by the platform name it carries, if any.
func ClassifyError(err error) Code {
	var cerr *Error
	if errors.As(err, &cerr) {
		return Classify(cerr.Name)
	}
	return CodeUnknown
}
