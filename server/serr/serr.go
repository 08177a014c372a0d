// Package serr holds common error objects used across the sentree server.
// Notably, it contains the Error type, which can be created with one or more
// 'cause' errors. Calling errors.Is() on this Error type with an argument
// consisting of any of the errors it has as a cause will return true.
//
// This package also holds several global error constants created via
// errors.New().
package serr

import "errors"

var (
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("resource with same identifying information already exists")
	ErrDB             = errors.New("an error occured with the DB")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal  = errors.New("malformed data in request")
	ErrGenerate       = errors.New("sentences could not be generated from the grammar")
)

// Error is a typed error returned by the service layer of the sentree server.
// It contains both a message explaining what happened as well as one or more
// error values it considers to be its causes. Calling errors.Is on some Error
// value err along with any value of error it holds as one of its causes will
// return true.
//
// If Error has at least one cause defined, the result of calling Error.Error()
// will be its primary message with the result of calling Error() on its first
// cause appended to it.
//
// Error should not be used directly; call New to create one.
type Error struct {
	msg   string
	cause []error
}

// Error returns the message defined for the Error, concatenated with the
// message of its first cause if it has one. If no message was given, only the
// first cause's message is returned.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}

	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}

	return e.msg
}

// Unwrap returns the causes of Error. The return value will be nil if no causes
// were defined for it.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether Error either Is itself the given target error, or one of
// its causes is.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allCausesEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allCausesEqual = false
					break
				}
			}
			if allCausesEqual {
				return true
			}
		}
	}

	for i := range e.cause {
		if e.cause[i] == target {
			return true
		}
	}
	return false
}

// WrapDB creates a new Error that wraps the given error as a cause and
// automatically adds ErrDB as another cause. A message may be provided with
// msg, but it may be left as "".
func WrapDB(msg string, err error) Error {
	return Error{
		msg:   msg,
		cause: []error{err, ErrDB},
	}
}

// New creates a new Error with the given message, along with any errors it
// should wrap as its causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
