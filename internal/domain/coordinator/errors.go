package coordinator

import "fmt"

// ValidationError rejects an operation before any write happens. No partial
// state exists when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError marks a referenced patient, treatment or lab that no longer
// exists at the moment of use.
type NotFoundError struct {
	Entity string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed store call. Whether it aborts the whole
// operation depends on which step it occurred in.
type PersistenceError struct {
	Step string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
