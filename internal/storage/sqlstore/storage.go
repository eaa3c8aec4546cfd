// Package sqlstore implements the entries relation on top of database/sql. Backends provide a
// Dialect describing placeholder syntax and how their drivers report uniqueness violations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ storage.EntryStorage = (*Storage)(nil)
)

const (
	queryInsert = `INSERT INTO entries (created_at, modified_at, hits, kind, identifier, fingerprint)
		VALUES (?, ?, 0, ?, ?, ?) RETURNING id`
	querySelectByIdentifier = `SELECT id, created_at, modified_at, hits, kind, identifier, fingerprint
		FROM entries WHERE identifier = ?`
	querySelectByFingerprint = `SELECT id, created_at, modified_at, hits, kind, identifier, fingerprint
		FROM entries WHERE fingerprint = ?`
	queryRecordHit = `UPDATE entries SET hits = hits + 1, modified_at = ? WHERE identifier = ?`
	queryCount     = `SELECT COUNT(*) FROM entries`
)

// Dialect describes driver-specific behaviour.
type Dialect struct {
	// Name is used in log records.
	Name string
	// DollarPlaceholders switches ? placeholders to $1, $2, ...
	DollarPlaceholders bool
	// Conflict reports which unique column an insert error violated, if any.
	Conflict func(err error) (field string, ok bool)
}

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	DB      *sql.DB
	dialect Dialect
	queries map[string]string
	now     func() time.Time
	log     *slog.Logger
}

// New wraps an opened and migrated database.
func New(db *sql.DB, dialect Dialect, log *slog.Logger) *Storage {
	if log == nil {
		log = slog.Default()
	}
	st := &Storage{
		DB:      db,
		dialect: dialect,
		queries: make(map[string]string),
		now:     time.Now,
		log:     log.With("storage", dialect.Name),
	}
	for _, q := range []string{queryInsert, querySelectByIdentifier, querySelectByFingerprint, queryRecordHit, queryCount} {
		st.queries[q] = q
		if dialect.DollarPlaceholders {
			st.queries[q] = rebind(q)
		}
	}
	return st
}

// SetClock replaces the time source used for created_at and modified_at.
func (s *Storage) SetClock(now func() time.Time) {
	s.now = now
}

// Insert stores a new entry inside a transaction and runs hook before committing.
func (s *Storage) Insert(ctx context.Context, newEntry modelentry.NewEntry, hook storage.InsertHook) (entry modelentry.Entry, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return modelentry.Entry{}, s.wrap(ctx, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Error("rolling back insert", "identifier", newEntry.Identifier, "error", rbErr)
			}
		}
	}()

	now := s.now().Unix()
	entry = modelentry.Entry{
		CreatedAt:   time.Unix(now, 0).UTC(),
		ModifiedAt:  time.Unix(now, 0).UTC(),
		Kind:        newEntry.Kind,
		Identifier:  newEntry.Identifier,
		Fingerprint: newEntry.Fingerprint,
	}
	row := tx.QueryRowContext(ctx, s.queries[queryInsert], now, now, string(newEntry.Kind), newEntry.Identifier, newEntry.Fingerprint)
	if err = row.Scan(&entry.ID); err != nil {
		if field, ok := s.dialect.Conflict(err); ok {
			value := newEntry.Identifier
			if field == storageErrors.FieldFingerprint {
				value = newEntry.Fingerprint
			}
			err = &storageErrors.ConflictError{Field: field, Value: value, Err: err}
			s.log.Debug("inserting entry", "identifier", newEntry.Identifier, "error", err)
			return modelentry.Entry{}, err
		}
		err = s.wrap(ctx, err)
		return modelentry.Entry{}, err
	}
	if hook != nil {
		if err = hook(ctx, entry); err != nil {
			return modelentry.Entry{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = s.wrap(ctx, err)
		return modelentry.Entry{}, err
	}
	s.log.Debug("inserting entry", "identifier", entry.Identifier, "kind", entry.Kind, "id", entry.ID)
	return entry, nil
}

// GetByIdentifier returns the entry named by identifier.
func (s *Storage) GetByIdentifier(ctx context.Context, identifier string) (modelentry.Entry, error) {
	return s.selectOne(ctx, s.queries[querySelectByIdentifier], identifier)
}

// GetByFingerprint returns the entry holding fingerprint.
func (s *Storage) GetByFingerprint(ctx context.Context, fingerprint string) (modelentry.Entry, error) {
	return s.selectOne(ctx, s.queries[querySelectByFingerprint], fingerprint)
}

func (s *Storage) selectOne(ctx context.Context, query, key string) (modelentry.Entry, error) {
	var (
		entry            modelentry.Entry
		created, updated int64
		kind             string
	)
	err := s.DB.QueryRowContext(ctx, query, key).Scan(
		&entry.ID, &created, &updated, &entry.Hits, &kind, &entry.Identifier, &entry.Fingerprint,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return modelentry.Entry{}, &storageErrors.NotFoundError{Key: key}
	}
	if err != nil {
		if ctx.Err() != nil {
			return modelentry.Entry{}, &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return modelentry.Entry{}, &storageErrors.ScanningError{Err: err}
	}
	entry.CreatedAt = time.Unix(created, 0).UTC()
	entry.ModifiedAt = time.Unix(updated, 0).UTC()
	entry.Kind = modelentry.Kind(kind)
	return entry, nil
}

// RecordHit increments the hit counter of an entry and refreshes its modification time in a
// single statement. Unknown identifiers are ignored.
func (s *Storage) RecordHit(ctx context.Context, identifier string) error {
	_, err := s.DB.ExecContext(ctx, s.queries[queryRecordHit], s.now().Unix(), identifier)
	if err != nil {
		return s.wrap(ctx, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.QueryRowContext(ctx, s.queries[queryCount]).Scan(&n); err != nil {
		if ctx.Err() != nil {
			return 0, &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		return 0, &storageErrors.ScanningError{Err: err}
	}
	return n, nil
}

// PingDB checks the database connection.
func (s *Storage) PingDB() error {
	return s.DB.Ping()
}

// CloseDB closes the database connection.
func (s *Storage) CloseDB() error {
	return s.DB.Close()
}

func (s *Storage) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	return &storageErrors.ExecutionError{Err: err}
}

// rebind converts ? placeholders to positional $n ones.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
