// Package errors defines the sentinel error taxonomy used throughout the
// file system core. File-level failures the core reports (bad descriptor,
// missing file, full tables, and so on) are constants in errno.go,
// optionally wrapped with extra context via WithMessage or WrapError;
// device and serialization failures are returned as plain wrapped errors.
package errors

import "fmt"

// DriverError is an error that can carry additional context. WithMessage
// keeps the original error in the Unwrap chain, so errors.Is still matches
// the sentinel it was built from. WrapError unwraps to the error passed to
// it instead, so errors.Is matches that error, not the sentinel WrapError
// was called on.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
}

// -----------------------------------------------------------------------------

type customDriverError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a
// string describing the error.
func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
