package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the normal absent-entity outcome for lookups.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate signals a uniqueness violation (email, code).
	ErrDuplicate = errors.New("already exists")
)

// ValidationError reports malformed or missing required input.
// It is always surfaced to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InfraError classifies a backend as unreachable, as opposed to a
// business-rule failure. The failover layer retries these against the
// fallback store; they only surface when the fallback fails too.
type InfraError struct {
	Op  string
	Err error
}

func (e *InfraError) Error() string { return "infra: " + e.Op + ": " + e.Err.Error() }
func (e *InfraError) Unwrap() error { return e.Err }

func Infra(op string, err error) error {
	return &InfraError{Op: op, Err: err}
}

func IsInfra(err error) bool {
	var ie *InfraError
	return errors.As(err, &ie)
}
