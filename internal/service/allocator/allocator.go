// Package allocator mints unique identifiers for fingerprints, deduplicating repeated submissions.
package allocator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/codec"
	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

// Defaults for the allocation loop.
const (
	DefaultMaxTries    = 10
	DefaultSpaceFactor = 10
)

// Store is the part of the entry storage the allocator needs.
type Store interface {
	storage.EntrySetter
	storage.EntryGetter
	storage.Counter
}

// Allocator struct defines data structure handling and provides support for adding new implementations.
type Allocator struct {
	store       Store
	encoder     codec.Encoder
	maxTries    int
	spaceFactor int64
	randN       func(n int64) int64
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxTries bounds the number of drawn identifiers per submission.
func WithMaxTries(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxTries = n
		}
	}
}

// WithSpaceFactor sets how many times larger than the entry count the drawing range is.
func WithSpaceFactor(f int64) Option {
	return func(a *Allocator) {
		if f > 1 {
			a.spaceFactor = f
		}
	}
}

// WithRand replaces the source drawing integers uniformly from [0, n).
func WithRand(randN func(n int64) int64) Option {
	return func(a *Allocator) {
		a.randN = randN
	}
}

// WithMetrics records retries and exhausted submissions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Allocator) {
		a.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Allocator) {
		a.log = log
	}
}

// New creates an Allocator over store using encoder to turn drawn integers into identifiers.
func New(store Store, encoder codec.Encoder, opts ...Option) (*Allocator, error) {
	if store == nil {
		return nil, &serviceErrors.ServiceFoundNilStorage{Msg: "nil storage was passed to allocator initializer"}
	}
	a := &Allocator{
		store:       store,
		encoder:     encoder,
		maxTries:    DefaultMaxTries,
		spaceFactor: DefaultSpaceFactor,
		randN:       rand.Int64N,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "allocator")
	return a, nil
}

// Submit returns the entry holding fingerprint, minting a new identifier if there is none yet.
// The boolean result reports whether a new entry was created. hook runs inside the insert
// transaction of a newly minted entry.
func (a *Allocator) Submit(ctx context.Context, fingerprint string, kind modelentry.Kind, hook storage.InsertHook) (modelentry.Entry, bool, error) {
	if !kind.Valid() {
		return modelentry.Entry{}, false, &serviceErrors.UnsupportedKindError{Kind: string(kind)}
	}
	entry, err := a.store.GetByFingerprint(ctx, fingerprint)
	if err == nil {
		return entry, false, nil
	}
	var notFound *storageErrors.NotFoundError
	if !errors.As(err, &notFound) {
		return modelentry.Entry{}, false, err
	}

	var (
		lastConflict error
		space        int64
	)
	for try := 1; try <= a.maxTries; try++ {
		// the range follows the entry count, which grows while concurrent submitters win
		count, err := a.store.Count(ctx)
		if err != nil {
			return modelentry.Entry{}, false, err
		}
		space = a.space(count)
		identifier, err := a.encoder.Encode(uint64(a.randN(space)))
		if err != nil {
			return modelentry.Entry{}, false, err
		}
		entry, err := a.store.Insert(ctx, modelentry.NewEntry{Identifier: identifier, Fingerprint: fingerprint, Kind: kind}, hook)
		if err == nil {
			a.log.Debug("minted identifier", "identifier", identifier, "kind", kind, "try", try)
			return entry, true, nil
		}
		var conflict *storageErrors.ConflictError
		if !errors.As(err, &conflict) {
			return modelentry.Entry{}, false, err
		}
		if conflict.Field == storageErrors.FieldFingerprint {
			// a concurrent submission of the same content won the race
			entry, err := a.store.GetByFingerprint(ctx, fingerprint)
			if err != nil {
				return modelentry.Entry{}, false, err
			}
			return entry, false, nil
		}
		lastConflict = err
		a.metrics.ObserveRetry(kind.String())
		a.log.Debug("identifier taken", "identifier", identifier, "try", try)
	}
	a.metrics.ObserveExhausted(kind.String())
	a.log.Warn("allocation exhausted", "tries", a.maxTries, "space", space)
	return modelentry.Entry{}, false, &serviceErrors.AllocationExhaustedError{Tries: a.maxTries, Err: lastConflict}
}

// space is the size of the drawing range for count existing entries.
func (a *Allocator) space(count int64) int64 {
	if count < 1 {
		count = 1
	}
	if count > math.MaxInt64/a.spaceFactor {
		return math.MaxInt64
	}
	return count * a.spaceFactor
}
