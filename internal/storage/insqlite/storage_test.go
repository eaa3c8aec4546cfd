package insqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/logger"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

type StorageTestSuite struct {
	suite.Suite
	path    string
	storage *Storage
}

func (suite *StorageTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "entries.sqlite")
	db, err := Open(context.Background(), suite.path)
	suite.Require().NoError(err)
	suite.storage = NewStorage(db, logger.Discard())
}

func (suite *StorageTestSuite) TearDownTest() {
	_ = suite.storage.CloseDB()
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}

func (suite *StorageTestSuite) TestInsertAndGet() {
	ctx := context.Background()
	entry, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "b", Fingerprint: "https://example.com", Kind: modelentry.KindURL}, nil)
	suite.Require().NoError(err)
	suite.NotZero(entry.ID)
	suite.Equal(int64(0), entry.Hits)
	suite.Equal(entry.CreatedAt, entry.ModifiedAt)

	byID, err := suite.storage.GetByIdentifier(ctx, "b")
	suite.Require().NoError(err)
	suite.Equal(entry, byID)

	byFP, err := suite.storage.GetByFingerprint(ctx, "https://example.com")
	suite.Require().NoError(err)
	suite.Equal(entry, byFP)
}

func (suite *StorageTestSuite) TestGetNotFound() {
	_, err := suite.storage.GetByIdentifier(context.Background(), "missing")
	var notFound *storageErrors.NotFoundError
	suite.ErrorAs(err, &notFound)
	_, err = suite.storage.GetByFingerprint(context.Background(), "missing")
	suite.ErrorAs(err, &notFound)
}

func (suite *StorageTestSuite) TestInsertConflicts() {
	ctx := context.Background()
	_, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp1", Kind: modelentry.KindPaste}, nil)
	suite.Require().NoError(err)

	_, err = suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp2", Kind: modelentry.KindPaste}, nil)
	var conflict *storageErrors.ConflictError
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal(storageErrors.FieldIdentifier, conflict.Field)

	_, err = suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "c", Fingerprint: "fp1", Kind: modelentry.KindPaste}, nil)
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal(storageErrors.FieldFingerprint, conflict.Field)

	n, err := suite.storage.Count(ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
}

func (suite *StorageTestSuite) TestInsertHookRollsBack() {
	ctx := context.Background()
	hookErr := errors.New("disk full")
	_, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindPaste},
		func(ctx context.Context, entry modelentry.Entry) error {
			suite.Equal("a", entry.Identifier)
			return hookErr
		})
	suite.ErrorIs(err, hookErr)

	_, err = suite.storage.GetByIdentifier(ctx, "a")
	var notFound *storageErrors.NotFoundError
	suite.ErrorAs(err, &notFound)

	// the identifier stays free after the rollback
	_, err = suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindPaste}, nil)
	suite.NoError(err)
}

func (suite *StorageTestSuite) TestRecordHit() {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	suite.storage.SetClock(func() time.Time { return now })
	created, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindURL}, nil)
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		now = now.Add(time.Minute)
		suite.Require().NoError(suite.storage.RecordHit(ctx, "a"))
	}
	entry, err := suite.storage.GetByIdentifier(ctx, "a")
	suite.Require().NoError(err)
	suite.Equal(int64(3), entry.Hits)
	suite.Equal(created.CreatedAt, entry.CreatedAt)
	suite.Equal(start.Add(3*time.Minute), entry.ModifiedAt)

	suite.NoError(suite.storage.RecordHit(ctx, "missing"))
}

func (suite *StorageTestSuite) TestConcurrentHits() {
	ctx := context.Background()
	_, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindURL}, nil)
	suite.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			suite.NoError(suite.storage.RecordHit(ctx, "a"))
		}()
	}
	wg.Wait()
	entry, err := suite.storage.GetByIdentifier(ctx, "a")
	suite.Require().NoError(err)
	suite.Equal(int64(20), entry.Hits)
}

func (suite *StorageTestSuite) TestReopenKeepsEntries() {
	ctx := context.Background()
	_, err := suite.storage.Insert(ctx, modelentry.NewEntry{Identifier: "a", Fingerprint: "fp", Kind: modelentry.KindURL}, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.storage.CloseDB())

	db, err := Open(ctx, suite.path)
	suite.Require().NoError(err)
	suite.storage = NewStorage(db, logger.Discard())
	entry, err := suite.storage.GetByIdentifier(ctx, "a")
	suite.Require().NoError(err)
	suite.Equal(modelentry.KindURL, entry.Kind)
}

func TestInitStorage_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	cfg := &config.StorageConfig{SQLitePath: filepath.Join(t.TempDir(), "db", "entries.sqlite")}
	st, err := InitStorage(ctx, wg, cfg, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, st.PingDB())

	cancel()
	wg.Wait()
	assert.Error(t, st.PingDB())
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()
	st := NewStorage(db, logger.Discard())
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
