// errno.go holds the sentinel error values the file system core can return.
// It mirrors the errno-as-string-constant shape the POSIX-oriented drivers in
// this family use, trimmed to a small set of codes. ErrExists, ErrIOFailed
// and ErrAlreadyInProgress are defined here but not returned by the core.

package errors

import (
	"fmt"
)

type FsError string

const ErrNoSpaceOnDevice = FsError("No space left on device")
const ErrNotFound = FsError("No such file or directory")
const ErrExists = FsError("File exists")
const ErrNameTooLong = FsError("File name too long")
const ErrInvalidArgument = FsError("Invalid argument")
const ErrInvalidFileDescriptor = FsError("Bad file descriptor")
const ErrTooManyOpenFiles = FsError("Too many open files in system")
const ErrFileTooLarge = FsError("File too large")
const ErrFileSystemCorrupted = FsError("Structure needs cleaning")
const ErrIOFailed = FsError("Input/output error")
const ErrAlreadyInProgress = FsError("Operation already in progress")
const ErrArgumentOutOfRange = FsError("Numerical argument out of domain")

func (e FsError) Error() string {
	return string(e)
}

func (e FsError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", string(e), message),
		originalError: e,
	}
}

func (e FsError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}
