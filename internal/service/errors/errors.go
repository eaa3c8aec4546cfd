// Package errors provides custom errors for types implementing Processor, Allocator and codec
// interfaces.
package errors

import (
	"fmt"
)

type (
	ServiceInitHashError struct {
		Msg string
	}
	ServiceEncodingHashError struct {
		Msg string
	}
	ServiceFoundNilStorage struct {
		Msg string
	}
	ServiceIncorrectInputURL struct {
		Msg string
	}
	// AllocationExhaustedError means every drawn identifier collided with an existing one.
	AllocationExhaustedError struct {
		Tries int
		Err   error
	}
	// UnsupportedKindError rejects an entry kind outside the closed set.
	UnsupportedKindError struct {
		Kind string
	}
	// ContentRemovedError means a paste entry exists but its payload is gone.
	ContentRemovedError struct {
		Identifier string
		Err        error
	}
	// UnknownIdentifierError means no entry is registered under the identifier.
	UnknownIdentifierError struct {
		Identifier string
		Err        error
	}
	// NotMarkdownError means a payload cannot be rendered as markdown.
	NotMarkdownError struct {
		Identifier string
	}
	// EmptyPayloadError rejects submissions without content.
	EmptyPayloadError struct{}
)

func (e *ServiceInitHashError) Error() string {
	return e.Msg
}

func (e *ServiceEncodingHashError) Error() string {
	return e.Msg
}

func (e *ServiceFoundNilStorage) Error() string {
	return e.Msg
}

func (e *ServiceIncorrectInputURL) Error() string {
	return e.Msg
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("no free identifier found after %d tries", e.Tries)
}

func (e *AllocationExhaustedError) Unwrap() error {
	return e.Err
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported entry kind %q", e.Kind)
}

func (e *ContentRemovedError) Error() string {
	return fmt.Sprintf("%s: content was removed", e.Identifier)
}

func (e *ContentRemovedError) Unwrap() error {
	return e.Err
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%s: unknown identifier", e.Identifier)
}

func (e *UnknownIdentifierError) Unwrap() error {
	return e.Err
}

func (e *NotMarkdownError) Error() string {
	return fmt.Sprintf("%s: not renderable as markdown", e.Identifier)
}

func (e *EmptyPayloadError) Error() string {
	return "empty payload"
}
