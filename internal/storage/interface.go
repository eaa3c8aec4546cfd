// Package storage provides interfaces for types to be in compliance with.
package storage

import (
	"context"

	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
)

//go:generate mockgen -destination=../mocks/mock_storage.go -package=mocks github.com/danilovkiri/dk_go_pastebin/internal/storage EntryStorage

// InsertHook runs inside the insert transaction after the row is written. A non-nil error rolls
// the insert back.
type InsertHook func(ctx context.Context, entry modelentry.Entry) error

// EntrySetter defines a set of methods for types implementing EntrySetter.
type EntrySetter interface {
	Insert(ctx context.Context, newEntry modelentry.NewEntry, hook InsertHook) (modelentry.Entry, error)
}

// EntryGetter defines a set of methods for types implementing EntryGetter.
type EntryGetter interface {
	GetByIdentifier(ctx context.Context, identifier string) (modelentry.Entry, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (modelentry.Entry, error)
}

// HitRecorder defines a set of methods for types implementing HitRecorder.
type HitRecorder interface {
	RecordHit(ctx context.Context, identifier string) error
}

// Counter defines a set of methods for types implementing Counter.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Pinger defines a set of methods for types implementing Pinger.
type Pinger interface {
	PingDB() error
}

// Closer defines a set of methods for types implementing Closer.
type Closer interface {
	CloseDB() error
}

// EntryStorage defines a set of embedded interfaces for types implementing EntryStorage.
type EntryStorage interface {
	EntrySetter
	EntryGetter
	HitRecorder
	Counter
	Pinger
	Closer
}
