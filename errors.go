// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorCategory is the category of every [*Error].
const ErrorCategory = "libsock error"

// errorMessageUnavailable is what [ErrorMessage] returns when the platform
// cannot describe an error code.
const errorMessageUnavailable = "unable to retrieve error message"

var (
	// ErrInvalidArgument indicates a caller-contract violation (nil address,
	// empty buffer, option size mismatch) detected before any native call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoResolution is returned by [*Socket.Bind] when the socket was not
	// opened from an [AddressInfo] carrying an address.
	ErrNoResolution = errors.New("argument-less bind requires a socket opened from an address info entry")

	// ErrUnsupportedProtocol indicates that the protocol database has no
	// entry for the requested protocol name.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")

	// ErrAddressFamilyNotSupported indicates an address family other than
	// [FamilyInet] and [FamilyInet6] where an address is required.
	ErrAddressFamilyNotSupported = errors.New("address family not supported")

	// ErrResolution is wrapped by every [*ResolveError].
	ErrResolution = errors.New("address resolution failed")
)

// Error is a failure reported by a native socket call.
//
// Code is the platform error code (errno on Linux, WSAGetLastError on
// Windows) and is never rewritten, so it can be cross-referenced with the
// platform documentation. Use [errors.Is] with the native errno values
// (e.g., unix.ECONNREFUSED) to test for specific failures.
type Error struct {
	// Op is the native operation that failed (e.g., "connect").
	Op string

	// Code is the unmodified native error code.
	Code int

	// Message is the platform description of Code.
	Message string

	// Context is an optional caller-supplied message.
	Context string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s (%s %d)", e.Op, e.Context, e.Message, ErrorCategory, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s %d)", e.Op, e.Message, ErrorCategory, e.Code)
}

// Category returns [ErrorCategory].
func (e *Error) Category() string {
	return ErrorCategory
}

// Unwrap returns the native errno.
func (e *Error) Unwrap() error {
	return syscall.Errno(e.Code)
}

// WithContext returns a copy of e carrying the given context message.
func (e *Error) WithContext(message string) *Error {
	dup := *e
	dup.Context = message
	return &dup
}

// ErrorMessage returns the platform description of a native error code.
//
// It never fails: when the platform cannot describe code, it returns
// "unable to retrieve error message".
func ErrorMessage(code int) string {
	return DefaultPlatform().ErrorMessage(code)
}

// newError converts an error returned by a [Platform] into an [*Error].
//
// Errors that do not carry a native errno (e.g., [ErrInvalidArgument]
// returned by a fake platform) are returned unchanged.
func newError(p Platform, op string, err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	return &Error{Op: op, Code: int(errno), Message: p.ErrorMessage(int(errno))}
}

// ResolveError is a name or service resolution failure.
//
// It wraps both [ErrResolution] and the underlying cause.
type ResolveError struct {
	// Hostname is the host name being resolved.
	Hostname string

	// Service is the service name being resolved.
	Service string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q/%q: %s", e.Hostname, e.Service, e.Err.Error())
}

// Unwrap returns [ErrResolution] and the underlying cause.
func (e *ResolveError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}
