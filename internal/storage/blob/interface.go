// Package blob provides interfaces and errors for paste payload repositories.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
)

//go:generate mockgen -destination=../../mocks/mock_blob.go -package=mocks github.com/danilovkiri/dk_go_pastebin/internal/storage/blob Storage

// Storer defines a set of methods for types implementing Storer.
type Storer interface {
	Store(ctx context.Context, key string, data []byte) error
}

// Fetcher defines a set of methods for types implementing Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Storage defines a set of embedded interfaces for types implementing Storage.
type Storage interface {
	Storer
	Fetcher
}

type (
	// NotFoundError is returned by Fetch when no payload is stored under a key.
	NotFoundError struct {
		Key string
		Err error
	}
	// InvalidKeyError is returned for keys that cannot name a single object.
	InvalidKeyError struct {
		Key string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: blob not found", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("%q: invalid blob key", e.Key)
}

// ValidateKey rejects empty keys and keys that would escape a flat namespace.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || path.Base(key) != key || strings.ContainsRune(key, '\\') {
		return &InvalidKeyError{Key: key}
	}
	return nil
}

