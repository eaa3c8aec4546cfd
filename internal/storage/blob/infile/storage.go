// Package infile provides a blob repository keeping each payload in its own file under the uploads
// directory.
package infile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ blob.Storage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for adding new implementations.
type Storage struct {
	Dir string
	log *slog.Logger
}

// InitStorage creates the uploads directory if needed and returns a Storage rooted there.
func InitStorage(cfg *config.StorageConfig, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Storage{Dir: cfg.UploadsDir, log: log.With("blob", "infile")}, nil
}

// Store writes data under key, replacing any previous payload. The file appears atomically.
func (s *Storage) Store(ctx context.Context, key string, data []byte) error {
	if err := blob.ValidateKey(key); err != nil {
		return err
	}
	type writeResult struct {
		tmp string
		err error
	}
	// a buffered channel keeps the writer from leaking when ctx is done first
	writeDone := make(chan writeResult, 1)
	go func() {
		tmp, err := s.writeTemp(key, data)
		writeDone <- writeResult{tmp: tmp, err: err}
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("storing blob", "key", key, "error", ctx.Err())
		// the payload is only published by the caller, so the late temp file is dropped
		go func() {
			if res := <-writeDone; res.err == nil {
				_ = os.Remove(res.tmp)
			}
		}()
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case res := <-writeDone:
		if res.err != nil {
			s.log.Error("storing blob", "key", key, "error", res.err)
			return res.err
		}
		if err := ctx.Err(); err != nil {
			_ = os.Remove(res.tmp)
			return &storageErrors.ContextTimeoutExceededError{Err: err}
		}
		if err := os.Rename(res.tmp, filepath.Join(s.Dir, key)); err != nil {
			_ = os.Remove(res.tmp)
			s.log.Error("storing blob", "key", key, "error", err)
			return err
		}
		s.log.Debug("storing blob", "key", key, "size", len(data))
		return nil
	}
}

// writeTemp writes data to a fresh temporary file next to the final location.
func (s *Storage) writeTemp(key string, data []byte) (tmp string, err error) {
	tmp = filepath.Join(s.Dir, "."+key+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return "", err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return tmp, nil
}

// Fetch returns the payload stored under key.
func (s *Storage) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := blob.ValidateKey(key); err != nil {
		return nil, err
	}
	type fetchResult struct {
		data []byte
		err  error
	}
	fetchDone := make(chan fetchResult, 1)
	go func() {
		data, err := os.ReadFile(filepath.Join(s.Dir, key))
		fetchDone <- fetchResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("fetching blob", "key", key, "error", ctx.Err())
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case res := <-fetchDone:
		if errors.Is(res.err, fs.ErrNotExist) {
			return nil, &blob.NotFoundError{Key: key, Err: res.err}
		}
		if res.err != nil {
			return nil, res.err
		}
		return res.data, nil
	}
}
