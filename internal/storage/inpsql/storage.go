// Package inpsql provides the PostgreSQL entry storage used when a database DSN is configured.
package inpsql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

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

// Names of the unique constraints created by the migrations.
const (
	constraintIdentifier  = "entries_identifier_key"
	constraintFingerprint = "entries_fingerprint_key"
)

// Dialect is the PostgreSQL flavour of the entries relation.
var Dialect = sqlstore.Dialect{
	Name:               "psql",
	DollarPlaceholders: true,
	Conflict:           conflict,
}

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	*sqlstore.Storage
}

// InitStorage initializes a Storage object, applies migrations and starts a listener closing the
// connection pool once ctx is done.
func InitStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	driver := cfg.DatabaseDriver
	if driver == "" {
		driver = config.DriverPGX
	}
	db, err := sql.Open(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, &storageErrors.ExecutionError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &storageErrors.ExecutionError{Err: err}
	}
	if err := migrations.Up(ctx, db, goose.DialectPostgres); err != nil {
		_ = db.Close()
		return nil, &storageErrors.MigrationError{Err: err}
	}
	st := NewStorage(db, log)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := st.CloseDB(); err != nil {
			log.Error("closing PSQL DB", "error", err)
			return
		}
		log.Info("PSQL DB connection closed successfully")
	}()
	return st, nil
}

// NewStorage wraps an opened and migrated PostgreSQL connection pool.
func NewStorage(db *sql.DB, log *slog.Logger) *Storage {
	return &Storage{Storage: sqlstore.New(db, Dialect, log)}
}

// conflict recognizes unique violations reported by either pgx or lib/pq.
func conflict(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return byConstraint(pgErr.ConstraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		return byConstraint(pqErr.Constraint)
	}
	return "", false
}

func byConstraint(name string) (string, bool) {
	switch name {
	case constraintIdentifier:
		return storageErrors.FieldIdentifier, true
	case constraintFingerprint:
		return storageErrors.FieldFingerprint, true
	}
	return "", false
}
