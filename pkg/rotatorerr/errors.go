// Package rotatorerr defines the typed error kinds used across the
// rotation engine so callers can branch on failure class instead of
// string-matching error text.
package rotatorerr

import "fmt"

// Kind classifies an error by the subsystem that produced it.
type Kind string

const (
	Config     Kind = "config"
	Auth       Kind = "auth"
	Crypto     Kind = "crypto"
	Resolution Kind = "resolution"
	Transport  Kind = "transport"
	Subprocess Kind = "subprocess"
	IO         Kind = "io"
	Policy     Kind = "policy"
)

// Error wraps an underlying error with a Kind and the operation that
// failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind and operation. Returns nil if err is
// nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
