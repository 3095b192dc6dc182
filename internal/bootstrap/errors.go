package bootstrap

import (
	"errors"
	"fmt"

	"github.com/qobs-build/bootstrap/internal/keyword"
	"github.com/qobs-build/bootstrap/internal/lint"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError is a bad invocation: an unknown keyword, a bad flag or an
// unknown subcommand.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func Usagef(format string, a ...any) error {
	return &UsageError{Err: fmt.Errorf(format, a...)}
}

// StatusError carries an exit status that must be reported verbatim.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// classify wraps the error kinds of the lower layers into UsageError or StatusError.
func classify(err error) error {
	var kwErr *keyword.UnknownError
	var langErr *lint.UnknownError
	if errors.As(err, &kwErr) || errors.As(err, &langErr) {
		return &UsageError{Err: err}
	}
	var fail *lint.Failure
	if errors.As(err, &fail) {
		return &StatusError{Status: fail.Status, Err: err}
	}
	return err
}

// ExitStatus maps an error returned by a handler to a process exit status.
func ExitStatus(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	var status *StatusError
	if errors.As(err, &status) {
		// a child killed by a signal reports -1
		if status.Status <= 0 || status.Status > 255 {
			return ExitFailure
		}
		return status.Status
	}
	return ExitFailure
}
