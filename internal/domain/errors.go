package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-database failure for the batch summary.
type ErrorKind string

const (
	ErrInvalidArgument           ErrorKind = "invalid argument"
	ErrIntegrityCheckFailed      ErrorKind = "integrity check failed"
	ErrBackupEngineFailure       ErrorKind = "backup engine failure"
	ErrVerificationNotFound      ErrorKind = "verification record not found"
	ErrVerificationMismatch      ErrorKind = "verification position mismatch"
	ErrVerificationEngineFailure ErrorKind = "verification rejected by engine"
	ErrConnectionFailed          ErrorKind = "server connection failed"
)

// StepError is one recorded failure: which database, which step, and the
// underlying cause. It never swallows the cause; Unwrap exposes it.
type StepError struct {
	Kind     ErrorKind
	Database string
	Step     Step
	Cause    error
}

func NewStepError(kind ErrorKind, database string, step Step, cause error) *StepError {
	return &StepError{Kind: kind, Database: database, Step: step, Cause: cause}
}

func (e *StepError) Error() string {
	if e.Database == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: database %q, step %q: %v", e.Kind, e.Database, e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a StepError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StepError
	return errors.As(err, &se) && se.Kind == kind
}
