// Package sterrors has errors that carry a human-facing diagnostic in addition
// to a technical error message. The diagnostic is what sentree writes in place
// of a tree when a sentence fails; the message is what goes to the logs.
package sterrors

import (
	"errors"
	"fmt"
)

type diagnosticError struct {
	msg   string
	human string
	wrap  error
}

func (e *diagnosticError) Error() string {
	return e.msg
}

// Diagnostic returns the line to show in output in place of a parse tree.
func (e *diagnosticError) Diagnostic() string {
	return e.human
}

// Unwrap gives the error that the diagnostic error wraps, if it wraps one.
func (e *diagnosticError) Unwrap() error {
	return e.wrap
}

// New returns an error with both a human-facing diagnostic and a technical
// message. If technical is empty, one is generated from the diagnostic.
func New(diagnostic, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got diagnostic %q", diagnostic)
	}
	return &diagnosticError{
		msg:   technical,
		human: diagnostic,
	}
}

// Wrap returns an error with the given diagnostic that wraps e. Its technical
// message is the message of e.
func Wrap(e error, diagnostic string) error {
	return &diagnosticError{
		msg:   e.Error(),
		human: diagnostic,
		wrap:  e,
	}
}

// Wrapf is like Wrap but builds the diagnostic from a format string.
func Wrapf(e error, diagnosticFormat string, a ...interface{}) error {
	return Wrap(e, fmt.Sprintf(diagnosticFormat, a...))
}

// Diagnostic gets the line to display for err. If err or any error it wraps
// was created by this package, its diagnostic is returned. Otherwise,
// err.Error() is returned.
func Diagnostic(err error) string {
	var de *diagnosticError
	if errors.As(err, &de) {
		return de.Diagnostic()
	}
	return err.Error()
}
