// Error kinds shared across layers. Handlers translate kinds into HTTP
// statuses; the service layer classifies failures exactly once and never
// re-wraps an already classified error.
package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrKindNotFound          ErrorKind = "not_found"
	ErrKindValidation        ErrorKind = "validation"
	ErrKindConflict          ErrorKind = "conflict"
	ErrKindRemoteUnavailable ErrorKind = "remote_unavailable"
	ErrKindRemoteNotFound    ErrorKind = "remote_not_found"
	ErrKindInternal          ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFoundError(message string) *Error   { return NewError(ErrKindNotFound, message) }
func ValidationError(message string) *Error { return NewError(ErrKindValidation, message) }
func ConflictError(message string) *Error   { return NewError(ErrKindConflict, message) }

// KindOf extracts the error kind, defaulting to internal for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrKindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// AsInternal wraps err into an internal error unless it is already
// classified.
func AsInternal(message string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return WrapError(ErrKindInternal, message, err)
}
