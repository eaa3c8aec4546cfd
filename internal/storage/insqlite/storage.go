// Package insqlite provides the embedded SQLite entry storage used when no external database is
// configured.
package insqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/migrations"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/sqlstore"
)

// Check interface implementation explicitly
var (
	_ storage.EntryStorage = (*Storage)(nil)
)

// busyTimeoutMs bounds how long a writer waits for the database lock.
const busyTimeoutMs = 5000

// Dialect is the SQLite flavour of the entries relation.
var Dialect = sqlstore.Dialect{
	Name:     "sqlite",
	Conflict: conflict,
}

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	*sqlstore.Storage
}

// InitStorage opens the database file, applies migrations and starts a listener closing the
// database once ctx is done.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	st := NewStorage(db, log)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.CloseDB(); err != nil {
			log.Error("closing SQLite DB", "error", err)
			return
		}
		log.Info("SQLite DB connection closed successfully")
	}()
	return st, nil
}

// Open opens and migrates the database at path. ":memory:" creates a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = fmt.Sprintf("file::memory:?_pragma=busy_timeout(%d)", busyTimeoutMs)
	} else {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMs)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and keeps in-memory databases alive
	db.SetMaxOpenConns(1)
	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		_ = db.Close()
		return nil, &storageErrors.MigrationError{Err: err}
	}
	return db, nil
}

// NewStorage wraps an opened and migrated SQLite database.
func NewStorage(db *sql.DB, log *slog.Logger) *Storage {
	return &Storage{Storage: sqlstore.New(db, Dialect, log)}
}

func conflict(err error) (string, bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	if sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE && sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT {
		return "", false
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "entries."+storageErrors.FieldIdentifier):
		return storageErrors.FieldIdentifier, true
	case strings.Contains(msg, "entries."+storageErrors.FieldFingerprint):
		return storageErrors.FieldFingerprint, true
	}
	return "", false
}
