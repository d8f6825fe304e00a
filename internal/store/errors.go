package store

import "errors"

// ErrNotFound is returned by Update and other operations that need an
// existing document. Reads report missing documents as nil records instead.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed input. It is always returned before
// any store call is made.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
