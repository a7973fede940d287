package core

import "github.com/pkg/errors"

// ErrDuplicateKey is returned by repositories when a write violates a uniqueness constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// PersistenceError wraps a failure of the underlying store without masking its cause.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func (err *PersistenceError) Error() string {
	return err.Op + ": " + err.Err.Error()
}

func (err *PersistenceError) Unwrap() error { return err.Err }

// IsDuplicateKey reports whether err was caused by a uniqueness violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
