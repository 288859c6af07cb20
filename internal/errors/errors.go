// Package errors is this client's error type: every failure the
// transport, resilience, queryir, queryparser, and shinyclient packages
// produce is a pkg/errors-wrapped codedError carrying a Code (one of the
// values in codes.go, or for parse errors one of those in
// queryparser/errors.go), so callers branch on Is(err, code) instead of
// matching error strings, and IsRetryable/IsConnectivityLoss/IsTimeout
// can classify a failure from its code alone.
package errors

import (
	"github.com/pkg/errors"
)

// Code identifies which of the closed set in codes.go an error carries.
// See Is.
type Code string

// New creates a coded error with a stack trace attached at the call
// site, the error constructor every failure path in this module uses
// instead of fmt.Errorf.
func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

// Cause unwraps err down to the codedError pkg/errors.WithStack attached
// in New/Wrap, skipping any stack-trace frames added along the way.
// CodeOf (codes.go) is built on this.
func Cause(err error) error {
	return errors.Cause(err)
}

// Is reports whether err was built from a codedError carrying target,
// at any point in its wrap chain — a fork of pkg/errors's own Is that
// compares against a Code instead of a sentinel error value.
func Is(err error, target Code) bool {
	match := codedError{
		Code: target,
	}
	return errors.Is(err, match)
}

// Wrap attaches message as additional context to err without losing its
// code, the annotation every transport/net failure path uses to record
// which syscall or step failed underneath the coded error.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// codedError is the concrete type New/Wrap build: a message tagged with
// a Code, so Is can match on the tag regardless of how much wrapping
// context has accumulated on top of it.
type codedError struct {
	Code    Code
	Message string
}

func (ce codedError) Error() string {
	return ce.Message
}

func (ce codedError) Is(err error) bool {
	e, ok := err.(codedError)
	return ok && ce.Code == e.Code
}

// ErrUncoded is CodeOf's fallback for an error that never passed
// through New/Wrap.
const ErrUncoded Code = "Uncoded"
