// Package apierrors defines the error taxonomy shared by services,
// middleware and controllers. A BusinessError carries the HTTP status it
// maps to, so the translation to a response happens in exactly one place
// (middleware.ErrorHandler).
package apierrors

import "fmt"

// BusinessError is a caller-visible failure with a stable message and a
// matching HTTP status. Anything that is not a BusinessError is treated
// as an internal error and never leaks its message to the caller.
type BusinessError struct {
	Status  int
	Message string
	Details []string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// New builds a BusinessError with the given status and message.
func New(status int, message string) *BusinessError {
	return &BusinessError{Status: status, Message: message}
}

// Newf builds a BusinessError with a formatted message.
func Newf(status int, format string, args ...any) *BusinessError {
	return &BusinessError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns a copy of e carrying structured detail messages,
// used by validation failures.
func (e *BusinessError) WithDetails(details ...string) *BusinessError {
	return &BusinessError{Status: e.Status, Message: e.Message, Details: details}
}
