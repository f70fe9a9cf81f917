package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingConstraint   = errors.New("missing weekly constraint")
	ErrDuplicateConstraint = errors.New("duplicate weekly constraint")
	ErrUnknownDeveloper    = errors.New("unknown developer")
	ErrDuplicateDeveloper  = errors.New("duplicate developer")
	ErrInvalidLevel        = errors.New("invalid level")
	ErrInvalidHours        = errors.New("invalid weekly hours")
	ErrInvalidRate         = errors.New("invalid rate")
	ErrMalformedDeploy     = errors.New("malformed deploy")
	ErrNoSeniorForDeploy   = errors.New("deploy requires at least one senior developer")
	ErrInvalidPeriod       = errors.New("invalid scheduling period")
	ErrMalformedVariable   = errors.New("malformed variable name")
	ErrCostMismatch        = errors.New("reconstructed cost does not match solver objective")
	ErrScheduleViolation   = errors.New("schedule violates a hard rule")
)

// ConfigurationError is a fatal input problem detected before model construction
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MissingConstraintError reports a developer without a WeeklyConstraint record
type MissingConstraintError struct {
	DeveloperID int
}

func (e *MissingConstraintError) Error() string {
	return fmt.Sprintf("%v for developer %d", ErrMissingConstraint, e.DeveloperID)
}

func (e *MissingConstraintError) Is(target error) bool {
	return target == ErrMissingConstraint
}

// SolverError wraps an internal failure raised by the solver engine.
// It is fatal and never retried.
type SolverError struct {
	Err error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver failure: %v", e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err belongs to the configuration class
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	var mce *MissingConstraintError
	return errors.As(err, &ce) || errors.As(err, &mce)
}
