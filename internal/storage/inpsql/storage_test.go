package inpsql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/danilovkiri/dk_go_pastebin/internal/logger"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

var entryColumns = []string{"id", "created_at", "modified_at", "hits", "kind", "identifier", "fingerprint"}

type StorageTestSuite struct {
	suite.Suite
	mock    sqlmock.Sqlmock
	storage *Storage
	now     time.Time
}

func (suite *StorageTestSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	suite.Require().NoError(err)
	suite.mock = mock
	suite.storage = NewStorage(db, logger.Discard())
	suite.now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	suite.storage.SetClock(func() time.Time { return suite.now })
}

func (suite *StorageTestSuite) TearDownTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}

func (suite *StorageTestSuite) TestInsert() {
	unix := suite.now.Unix()
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO entries")).
		WithArgs(unix, unix, "paste", "a", "fp").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	suite.mock.ExpectCommit()

	var hooked bool
	entry, err := suite.storage.Insert(context.Background(), modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindPaste},
		func(ctx context.Context, entry modelentry.Entry) error {
			hooked = true
			suite.Equal(int64(7), entry.ID)
			return nil
		})
	suite.Require().NoError(err)
	suite.True(hooked)
	suite.Equal(modelentry.Entry{
		ID: 7, CreatedAt: suite.now, ModifiedAt: suite.now, Kind: modelentry.KindPaste, Identifier: "a", Fingerprint: "fp",
	}, entry)
}

func (suite *StorageTestSuite) TestInsertUsesDollarPlaceholders() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, 0, $3, $4, $5) RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	suite.mock.ExpectCommit()
	_, err := suite.storage.Insert(context.Background(), modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindURL}, nil)
	suite.NoError(err)
}

func (suite *StorageTestSuite) TestInsertConflicts() {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{
			name:  "pgx identifier",
			err:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintIdentifier},
			field: storageErrors.FieldIdentifier,
		},
		{
			name:  "pgx fingerprint",
			err:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintFingerprint},
			field: storageErrors.FieldFingerprint,
		},
		{
			name:  "pq identifier",
			err:   &pq.Error{Code: pq.ErrorCode(pgerrcode.UniqueViolation), Constraint: constraintIdentifier},
			field: storageErrors.FieldIdentifier,
		},
		{
			name:  "pq fingerprint",
			err:   &pq.Error{Code: pq.ErrorCode(pgerrcode.UniqueViolation), Constraint: constraintFingerprint},
			field: storageErrors.FieldFingerprint,
		},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mock.ExpectBegin()
			suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO entries")).WillReturnError(tt.err)
			suite.mock.ExpectRollback()

			_, err := suite.storage.Insert(context.Background(), modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindURL}, nil)
			var conflict *storageErrors.ConflictError
			suite.Require().ErrorAs(err, &conflict)
			suite.Equal(tt.field, conflict.Field)
		})
	}
}

func (suite *StorageTestSuite) TestInsertOtherError() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO entries")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation})
	suite.mock.ExpectRollback()

	_, err := suite.storage.Insert(context.Background(), modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: "bogus"}, nil)
	var execErr *storageErrors.ExecutionError
	suite.ErrorAs(err, &execErr)
}

func (suite *StorageTestSuite) TestInsertHookErrorRollsBack() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO entries")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	suite.mock.ExpectRollback()

	hookErr := errors.New("blob write failed")
	_, err := suite.storage.Insert(context.Background(), modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindPaste},
		func(context.Context, modelentry.Entry) error { return hookErr })
	suite.ErrorIs(err, hookErr)
}

func (suite *StorageTestSuite) TestGetByIdentifier() {
	unix := suite.now.Unix()
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM entries WHERE identifier = $1")).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(3, unix, unix+60, 2, "url", "a", "https://example.com"))

	entry, err := suite.storage.GetByIdentifier(context.Background(), "a")
	suite.Require().NoError(err)
	suite.Equal(modelentry.Entry{
		ID: 3, CreatedAt: suite.now, ModifiedAt: suite.now.Add(time.Minute), Hits: 2,
		Kind: modelentry.KindURL, Identifier: "a", Fingerprint: "https://example.com",
	}, entry)
}

func (suite *StorageTestSuite) TestGetByFingerprintNotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM entries WHERE fingerprint = $1")).
		WithArgs("fp").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err := suite.storage.GetByFingerprint(context.Background(), "fp")
	var notFound *storageErrors.NotFoundError
	suite.ErrorAs(err, &notFound)
}

func (suite *StorageTestSuite) TestRecordHit() {
	suite.mock.ExpectExec(regexp.QuoteMeta("UPDATE entries SET hits = hits + 1, modified_at = $1 WHERE identifier = $2")).
		WithArgs(suite.now.Unix(), "a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.NoError(suite.storage.RecordHit(context.Background(), "a"))
}

func (suite *StorageTestSuite) TestCount() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM entries")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	n, err := suite.storage.Count(context.Background())
	suite.Require().NoError(err)
	suite.Equal(int64(42), n)
}

func (suite *StorageTestSuite) TestCountCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := suite.storage.Count(ctx)
	var timeout *storageErrors.ContextTimeoutExceededError
	suite.ErrorAs(err, &timeout)
}
