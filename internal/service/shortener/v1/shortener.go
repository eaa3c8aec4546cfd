// Package shortener provides functionality for minting short identifiers for URLs and pastes and
// resolving them back.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/allocator"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/classifier"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/codec"
	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/fingerprint"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ shortener.Processor = (*Shortener)(nil)
)

type renderKey struct {
	identifier  string
	style       string
	lineNumbers bool
}

// Shortener struct defines data structure handling and provides support for adding new implementations.
type Shortener struct {
	EntryStorage storage.EntryStorage
	BlobStorage  blob.Storage
	allocator    *allocator.Allocator
	classifier   *classifier.Classifier
	fingerprint  fingerprint.Func
	cache        *lru.Cache[renderKey, classifier.Rendered]
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// InitShortener initializes a Shortener object and sets its attributes.
func InitShortener(st storage.EntryStorage, blobs blob.Storage, cfg *config.ServiceConfig, log *slog.Logger, m *metrics.Metrics, opts ...allocator.Option) (*Shortener, error) {
	if st == nil || blobs == nil {
		return nil, &serviceErrors.ServiceFoundNilStorage{Msg: "nil storage was passed to service initializer"}
	}
	if log == nil {
		log = slog.Default()
	}
	enc, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	digest, err := fingerprint.New(cfg.Digest)
	if err != nil {
		return nil, err
	}
	opts = append([]allocator.Option{
		allocator.WithMaxTries(cfg.MaxTries),
		allocator.WithSpaceFactor(cfg.SpaceFactor),
		allocator.WithMetrics(m),
		allocator.WithLogger(log),
	}, opts...)
	alloc, err := allocator.New(st, enc, opts...)
	if err != nil {
		return nil, err
	}
	var cache *lru.Cache[renderKey, classifier.Rendered]
	if cfg.RenderCacheSize > 0 {
		cache, err = lru.New[renderKey, classifier.Rendered](cfg.RenderCacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &Shortener{
		EntryStorage: st,
		BlobStorage:  blobs,
		allocator:    alloc,
		classifier:   classifier.New(cfg.DefaultStyle),
		fingerprint:  digest,
		cache:        cache,
		metrics:      m,
		log:          log.With("component", "shortener"),
	}, nil
}

func newCodec(cfg *config.ServiceConfig) (codec.Encoder, error) {
	alphabet := cfg.Alphabet
	if alphabet == "" {
		alphabet = config.DefaultAlphabet
	}
	switch cfg.IdentifierCodec {
	case config.CodecHashids:
		return codec.NewHashids(cfg.HashidsSalt, alphabet, 0)
	case config.CodecBijective, "":
		return codec.NewBijective(alphabet)
	}
	return nil, fmt.Errorf("unknown identifier codec %q", cfg.IdentifierCodec)
}

// SubmitURL returns the entry for rawURL, minting an identifier for URLs not seen before.
func (short *Shortener) SubmitURL(ctx context.Context, rawURL string) (modelentry.Entry, bool, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return modelentry.Entry{}, false, &serviceErrors.ServiceIncorrectInputURL{Msg: err.Error()}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return modelentry.Entry{}, false, &serviceErrors.ServiceIncorrectInputURL{Msg: fmt.Sprintf("%q is not an absolute URL", rawURL)}
	}
	entry, created, err := short.allocator.Submit(ctx, rawURL, modelentry.KindURL, nil)
	if err != nil {
		return modelentry.Entry{}, false, err
	}
	short.metrics.ObserveSubmission(modelentry.KindURL.String(), created)
	return entry, created, nil
}

// SubmitPaste stores data and returns its entry. Identical payloads share one identifier.
func (short *Shortener) SubmitPaste(ctx context.Context, data []byte) (shortener.Paste, error) {
	if len(data) == 0 {
		return shortener.Paste{}, &serviceErrors.EmptyPayloadError{}
	}
	typ := short.classifier.Classify(data)
	hook := func(ctx context.Context, entry modelentry.Entry) error {
		return short.BlobStorage.Store(ctx, entry.Identifier, data)
	}
	entry, created, err := short.allocator.Submit(ctx, short.fingerprint(data), modelentry.KindPaste, hook)
	if err != nil {
		return shortener.Paste{}, err
	}
	short.metrics.ObserveSubmission(modelentry.KindPaste.String(), created)
	return shortener.Paste{Entry: entry, Type: typ, Created: created}, nil
}

// Resolve looks an identifier up, records a hit and loads the payload of pastes. Anything after
// the first dot of identifier is treated as an extension and ignored.
func (short *Shortener) Resolve(ctx context.Context, identifier string) (shortener.Resolved, error) {
	name, ext := SplitExtension(identifier)
	entry, err := short.lookup(ctx, name)
	if err != nil {
		return shortener.Resolved{}, err
	}
	if err := short.EntryStorage.RecordHit(ctx, name); err != nil {
		return shortener.Resolved{}, err
	}
	entry.Hits++
	resolved := shortener.Resolved{Entry: entry, Extension: ext}
	if entry.Kind == modelentry.KindPaste {
		data, err := short.BlobStorage.Fetch(ctx, name)
		if err != nil {
			var notFound *blob.NotFoundError
			if errors.As(err, &notFound) {
				short.metrics.ObserveLookup(entry.Kind.String(), metrics.OutcomeRemoved)
				return shortener.Resolved{}, &serviceErrors.ContentRemovedError{Identifier: name, Err: err}
			}
			return shortener.Resolved{}, err
		}
		resolved.Data = data
		resolved.Type = short.classifier.Classify(data)
	}
	short.metrics.ObserveLookup(entry.Kind.String(), metrics.OutcomeHit)
	return resolved, nil
}

// Stats returns the entry for identifier without counting a hit.
func (short *Shortener) Stats(ctx context.Context, identifier string) (modelentry.Entry, error) {
	name, _ := SplitExtension(identifier)
	return short.lookup(ctx, name)
}

func (short *Shortener) lookup(ctx context.Context, name string) (modelentry.Entry, error) {
	entry, err := short.EntryStorage.GetByIdentifier(ctx, name)
	if err != nil {
		var notFound *storageErrors.NotFoundError
		if errors.As(err, &notFound) {
			short.metrics.ObserveLookup("", metrics.OutcomeUnknown)
			return modelentry.Entry{}, &serviceErrors.UnknownIdentifierError{Identifier: name, Err: err}
		}
		return modelentry.Entry{}, err
	}
	return entry, nil
}

// Render returns the HTML fragment of a resolved paste. Results are cached per identifier, style
// and line numbering since stored payloads never change.
func (short *Shortener) Render(resolved shortener.Resolved, opts shortener.RenderOptions) classifier.Rendered {
	key := renderKey{
		identifier:  resolved.Entry.Identifier,
		style:       short.classifier.StyleName(opts.Style),
		lineNumbers: opts.LineNumbers,
	}
	if short.cache != nil {
		if rendered, ok := short.cache.Get(key); ok {
			return rendered
		}
	}
	rendered := short.classifier.Render(resolved.Data, resolved.Type.MIME, classifier.Options{
		Identifier:  resolved.Entry.Identifier,
		Extension:   resolved.Type.Extension,
		Style:       key.style,
		LineNumbers: opts.LineNumbers,
	})
	if short.cache != nil {
		short.cache.Add(key, rendered)
	}
	return rendered
}

// RenderMarkdown renders a resolved paste as markdown.
func (short *Shortener) RenderMarkdown(resolved shortener.Resolved) (string, error) {
	if resolved.Entry.Kind != modelentry.KindPaste {
		return "", &serviceErrors.UnsupportedKindError{Kind: resolved.Entry.Kind.String()}
	}
	return short.classifier.RenderMarkdown(resolved.Entry.Identifier, resolved.Data)
}

// Styles lists the available highlight styles.
func (short *Shortener) Styles() []string {
	return short.classifier.Styles()
}

// StyleName resolves a requested style name to the one actually used.
func (short *Shortener) StyleName(name string) string {
	return short.classifier.StyleName(name)
}

// LoadPresets registers named URL and paste entries. Names already taken are left untouched.
func (short *Shortener) LoadPresets(ctx context.Context, presets config.Presets) error {
	for _, name := range sortedKeys(presets.URLs) {
		err := short.insertPreset(ctx, modelentry.NewEntry{Identifier: name, Fingerprint: presets.URLs[name], Kind: modelentry.KindURL}, nil)
		if err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(presets.Pastes) {
		data, err := os.ReadFile(presets.Pastes[name])
		if err != nil {
			return fmt.Errorf("reading paste preset %s: %w", name, err)
		}
		hook := func(ctx context.Context, entry modelentry.Entry) error {
			return short.BlobStorage.Store(ctx, entry.Identifier, data)
		}
		err = short.insertPreset(ctx, modelentry.NewEntry{Identifier: name, Fingerprint: short.fingerprint(data), Kind: modelentry.KindPaste}, hook)
		if err != nil {
			return err
		}
	}
	return nil
}

func (short *Shortener) insertPreset(ctx context.Context, newEntry modelentry.NewEntry, hook storage.InsertHook) error {
	if err := blob.ValidateKey(newEntry.Identifier); err != nil || strings.Contains(newEntry.Identifier, ".") {
		return fmt.Errorf("preset name %q cannot be used as an identifier", newEntry.Identifier)
	}
	_, err := short.EntryStorage.Insert(ctx, newEntry, hook)
	var conflict *storageErrors.ConflictError
	if errors.As(err, &conflict) {
		short.log.Info("preset already present", "identifier", newEntry.Identifier, "field", conflict.Field)
		return nil
	}
	if err != nil {
		return err
	}
	short.log.Info("preset loaded", "identifier", newEntry.Identifier, "kind", newEntry.Kind)
	return nil
}

// PingDB checks the entry storage connection.
func (short *Shortener) PingDB() error {
	return short.EntryStorage.PingDB()
}

// SplitExtension separates an identifier from the extension it was requested with.
func SplitExtension(identifier string) (string, string) {
	if i := strings.IndexByte(identifier, '.'); i >= 0 {
		return identifier[:i], identifier[i:]
	}
	return identifier, ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
