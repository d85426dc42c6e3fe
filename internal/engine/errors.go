package engine

import (
	"errors"
	"fmt"
)

// ErrFatal marks a block error that aborts the whole render
var ErrFatal = errors.New("fatal block error")

// ErrMissingParam is returned through MissingParam
var ErrMissingParam = errors.New("required parameter missing")

// ErrOutsideRoot is returned by a confined processor for absolute paths
var ErrOutsideRoot = errors.New("path outside template root")

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() []error { return []error{ErrFatal, e.err} }

// Fatal wraps err so that Render returns it instead of writing an inline marker
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// MissingParam reports a required block parameter that was not supplied
func MissingParam(block, param string) error {
	return Fatal(fmt.Errorf("%w: %s param is required for %s block", ErrMissingParam, param, block))
}

// IsFatal reports whether err aborts a render
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
