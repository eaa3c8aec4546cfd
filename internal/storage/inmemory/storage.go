// Package inmemory provides functionality for keeping entries in local process memory
// implemented as a pair of maps indexed by identifier and by fingerprint.
package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ storage.EntryStorage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	mu            sync.Mutex
	byIdentifier  map[string]*modelentry.Entry
	byFingerprint map[string]*modelentry.Entry
	lastID        int64
	now           func() time.Time
	log           *slog.Logger
}

// InitStorage initializes a Storage object and sets its attributes.
func InitStorage(log *slog.Logger) *Storage {
	if log == nil {
		log = slog.Default()
	}
	return &Storage{
		byIdentifier:  make(map[string]*modelentry.Entry),
		byFingerprint: make(map[string]*modelentry.Entry),
		now:           time.Now,
		log:           log.With("storage", "inmemory"),
	}
}

type insertResult struct {
	entry modelentry.Entry
	err   error
}

// Insert stores a new entry unless its identifier or fingerprint is already taken.
func (s *Storage) Insert(ctx context.Context, newEntry modelentry.NewEntry, hook storage.InsertHook) (modelentry.Entry, error) {
	// create a buffered channel so the goroutine never blocks after ctx cancellation
	insertDone := make(chan insertResult, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.byIdentifier[newEntry.Identifier]; ok {
			insertDone <- insertResult{err: &storageErrors.ConflictError{Field: storageErrors.FieldIdentifier, Value: newEntry.Identifier}}
			return
		}
		if _, ok := s.byFingerprint[newEntry.Fingerprint]; ok {
			insertDone <- insertResult{err: &storageErrors.ConflictError{Field: storageErrors.FieldFingerprint, Value: newEntry.Fingerprint}}
			return
		}
		now := time.Unix(s.now().Unix(), 0).UTC()
		entry := modelentry.Entry{
			ID:          s.lastID + 1,
			CreatedAt:   now,
			ModifiedAt:  now,
			Kind:        newEntry.Kind,
			Identifier:  newEntry.Identifier,
			Fingerprint: newEntry.Fingerprint,
		}
		if hook != nil {
			if err := hook(ctx, entry); err != nil {
				insertDone <- insertResult{err: err}
				return
			}
		}
		// a caller that gave up must not find its entry committed
		if err := ctx.Err(); err != nil {
			insertDone <- insertResult{err: &storageErrors.ContextTimeoutExceededError{Err: err}}
			return
		}
		s.lastID = entry.ID
		s.byIdentifier[entry.Identifier] = &entry
		s.byFingerprint[entry.Fingerprint] = &entry
		insertDone <- insertResult{entry: entry}
	}()

	// wait for the first channel to retrieve a value
	select {
	case <-ctx.Done():
		// the worker commits only while ctx is alive, so its result decides the outcome
		if res := <-insertDone; res.err == nil {
			return res.entry, nil
		}
		s.log.Warn("inserting entry", "error", ctx.Err())
		return modelentry.Entry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case res := <-insertDone:
		if res.err != nil {
			s.log.Debug("inserting entry", "identifier", newEntry.Identifier, "error", res.err)
			return modelentry.Entry{}, res.err
		}
		s.log.Debug("inserting entry", "identifier", res.entry.Identifier, "kind", res.entry.Kind)
		return res.entry, nil
	}
}

// GetByIdentifier returns the entry named by identifier.
func (s *Storage) GetByIdentifier(ctx context.Context, identifier string) (modelentry.Entry, error) {
	return s.get(ctx, identifier, s.byIdentifier)
}

// GetByFingerprint returns the entry holding fingerprint.
func (s *Storage) GetByFingerprint(ctx context.Context, fingerprint string) (modelentry.Entry, error) {
	return s.get(ctx, fingerprint, s.byFingerprint)
}

func (s *Storage) get(ctx context.Context, key string, index map[string]*modelentry.Entry) (modelentry.Entry, error) {
	retrieveDone := make(chan insertResult, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		entry, ok := index[key]
		if !ok {
			retrieveDone <- insertResult{err: &storageErrors.NotFoundError{Key: key}}
			return
		}
		retrieveDone <- insertResult{entry: *entry}
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("retrieving entry", "error", ctx.Err())
		return modelentry.Entry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case res := <-retrieveDone:
		return res.entry, res.err
	}
}

// RecordHit increments the hit counter of an entry and refreshes its modification time.
func (s *Storage) RecordHit(ctx context.Context, identifier string) error {
	hitDone := make(chan struct{}, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if entry, ok := s.byIdentifier[identifier]; ok {
			entry.Hits++
			entry.ModifiedAt = time.Unix(s.now().Unix(), 0).UTC()
		}
		hitDone <- struct{}{}
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("recording hit", "error", ctx.Err())
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case <-hitDone:
		return nil
	}
}

// Count returns the number of stored entries.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byIdentifier)), nil
}

// PingDB is a mock for SQL DB pinger for inmemory DB handling.
func (s *Storage) PingDB() error {
	return nil
}

// CloseDB is a mock for SQL DB closer for inmemory DB handling.
func (s *Storage) CloseDB() error {
	return nil
}
