// Package errors provides custom errors for types implementing EntryStorage and blob Storage interfaces.
package errors

import (
	"fmt"
)

// Unique columns of the entries relation.
const (
	FieldIdentifier  = "identifier"
	FieldFingerprint = "fingerprint"
)

type (
	NotFoundError struct {
		Key string
		Err error
	}
	ConflictError struct {
		Field string
		Value string
		Err   error
	}
	ContextTimeoutExceededError struct {
		Err error
	}
	StatementError struct {
		Err error
	}
	ScanningError struct {
		Err error
	}
	ExecutionError struct {
		Err error
	}
	MigrationError struct {
		Err error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found in storage", e.Key)
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: already exists in storage", e.Field, e.Value)
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: could not compile statement", e.Err.Error())
}

func (e *ScanningError) Error() string {
	return fmt.Sprintf("%s: could not scan rows", e.Err.Error())
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: could not query", e.Err.Error())
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("%s: could not apply migrations", e.Err.Error())
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func (e *ContextTimeoutExceededError) Unwrap() error {
	return e.Err
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

func (e *ScanningError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
