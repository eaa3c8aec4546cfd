package shortener

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/logger"
	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/mocks"
	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	shortenerService "github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob/infile"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/inmemory"
)

func testServiceConfig() *config.ServiceConfig {
	return &config.ServiceConfig{
		Alphabet:        config.DefaultAlphabet,
		MaxTries:        10,
		SpaceFactor:     10,
		IdentifierCodec: config.CodecBijective,
		Digest:          config.DigestBLAKE3,
		DefaultStyle:    "friendly",
		RenderCacheSize: 16,
	}
}

type ShortenerTestSuite struct {
	suite.Suite
	storage   *inmemory.Storage
	blobs     *infile.Storage
	metrics   *metrics.Metrics
	shortener *Shortener
	ctx       context.Context
}

func (suite *ShortenerTestSuite) SetupTest() {
	var err error
	suite.ctx = context.Background()
	suite.storage = inmemory.InitStorage(logger.Discard())
	suite.blobs, err = infile.InitStorage(&config.StorageConfig{UploadsDir: suite.T().TempDir()}, logger.Discard())
	suite.Require().NoError(err)
	suite.metrics = metrics.New()
	suite.shortener, err = InitShortener(suite.storage, suite.blobs, testServiceConfig(), logger.Discard(), suite.metrics)
	suite.Require().NoError(err)
}

func TestShortenerSuite(t *testing.T) {
	suite.Run(t, new(ShortenerTestSuite))
}

func (suite *ShortenerTestSuite) TestSubmitURL() {
	first, created, err := suite.shortener.SubmitURL(suite.ctx, " https://example.com/a ")
	suite.Require().NoError(err)
	suite.True(created)
	suite.Equal(modelentry.KindURL, first.Kind)
	suite.Equal("https://example.com/a", first.Fingerprint)

	second, created, err := suite.shortener.SubmitURL(suite.ctx, "https://example.com/a")
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(first.Identifier, second.Identifier)

	other, _, err := suite.shortener.SubmitURL(suite.ctx, "https://example.com/b")
	suite.Require().NoError(err)
	suite.NotEqual(first.Identifier, other.Identifier)
	expected := `
# HELP pastebin_submissions_total Submissions by entry kind and whether a new identifier was minted.
# TYPE pastebin_submissions_total counter
pastebin_submissions_total{created="false",kind="url"} 1
pastebin_submissions_total{created="true",kind="url"} 2
`
	suite.NoError(testutil.GatherAndCompare(suite.metrics.Registry, strings.NewReader(expected), "pastebin_submissions_total"))
}

func (suite *ShortenerTestSuite) TestSubmitURL_Invalid() {
	for _, raw := range []string{"", "some_invalid_URL", "/relative/path", "mailto:someone"} {
		_, _, err := suite.shortener.SubmitURL(suite.ctx, raw)
		var target *serviceErrors.ServiceIncorrectInputURL
		suite.ErrorAs(err, &target, raw)
	}
	n, err := suite.storage.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)
}

func (suite *ShortenerTestSuite) TestSubmitPaste() {
	data := []byte("hello world\n")
	paste, err := suite.shortener.SubmitPaste(suite.ctx, data)
	suite.Require().NoError(err)
	suite.True(paste.Created)
	suite.Equal(modelentry.KindPaste, paste.Entry.Kind)
	suite.Equal("text/plain", paste.Type.MIME)
	suite.Equal(".txt", paste.Type.Extension)

	stored, err := os.ReadFile(filepath.Join(suite.blobs.Dir, paste.Entry.Identifier))
	suite.Require().NoError(err)
	suite.Equal(data, stored)

	again, err := suite.shortener.SubmitPaste(suite.ctx, []byte("hello world\n"))
	suite.Require().NoError(err)
	suite.False(again.Created)
	suite.Equal(paste.Entry.Identifier, again.Entry.Identifier)
}

func (suite *ShortenerTestSuite) TestSubmitPaste_Empty() {
	_, err := suite.shortener.SubmitPaste(suite.ctx, nil)
	var target *serviceErrors.EmptyPayloadError
	suite.ErrorAs(err, &target)
}

func (suite *ShortenerTestSuite) TestResolve() {
	paste, err := suite.shortener.SubmitPaste(suite.ctx, []byte("print('hi')\n"))
	suite.Require().NoError(err)

	resolved, err := suite.shortener.Resolve(suite.ctx, paste.Entry.Identifier)
	suite.Require().NoError(err)
	suite.Equal(int64(1), resolved.Entry.Hits)
	suite.Equal([]byte("print('hi')\n"), resolved.Data)
	suite.Equal("", resolved.Extension)

	resolved, err = suite.shortener.Resolve(suite.ctx, paste.Entry.Identifier+".tar.gz")
	suite.Require().NoError(err)
	suite.Equal(int64(2), resolved.Entry.Hits)
	suite.Equal(".tar.gz", resolved.Extension)

	stats, err := suite.shortener.Stats(suite.ctx, paste.Entry.Identifier)
	suite.Require().NoError(err)
	suite.Equal(int64(2), stats.Hits)
	expected := `
# HELP pastebin_lookups_total Identifier lookups by entry kind and outcome.
# TYPE pastebin_lookups_total counter
pastebin_lookups_total{kind="paste",outcome="hit"} 2
`
	suite.NoError(testutil.GatherAndCompare(suite.metrics.Registry, strings.NewReader(expected), "pastebin_lookups_total"))
}

func (suite *ShortenerTestSuite) TestResolve_URL() {
	entry, _, err := suite.shortener.SubmitURL(suite.ctx, "https://example.com")
	suite.Require().NoError(err)
	resolved, err := suite.shortener.Resolve(suite.ctx, entry.Identifier)
	suite.Require().NoError(err)
	suite.Nil(resolved.Data)
	suite.Equal("https://example.com", resolved.Entry.Fingerprint)
}

func (suite *ShortenerTestSuite) TestResolve_Unknown() {
	_, err := suite.shortener.Resolve(suite.ctx, "nope.txt")
	var target *serviceErrors.UnknownIdentifierError
	suite.Require().ErrorAs(err, &target)
	suite.Equal("nope", target.Identifier)

	_, err = suite.shortener.Stats(suite.ctx, "nope")
	suite.ErrorAs(err, &target)
}

func (suite *ShortenerTestSuite) TestResolve_Removed() {
	paste, err := suite.shortener.SubmitPaste(suite.ctx, []byte("soon gone"))
	suite.Require().NoError(err)
	suite.Require().NoError(os.Remove(filepath.Join(suite.blobs.Dir, paste.Entry.Identifier)))

	_, err = suite.shortener.Resolve(suite.ctx, paste.Entry.Identifier)
	var target *serviceErrors.ContentRemovedError
	suite.ErrorAs(err, &target)

	// the entry still resolved, so the lookup is counted
	entry, err := suite.shortener.Stats(suite.ctx, paste.Entry.Identifier)
	suite.Require().NoError(err)
	suite.Equal(int64(1), entry.Hits)
}

func (suite *ShortenerTestSuite) TestRender() {
	paste, err := suite.shortener.SubmitPaste(suite.ctx, []byte(`{"a": [1, 2]}`))
	suite.Require().NoError(err)
	resolved, err := suite.shortener.Resolve(suite.ctx, paste.Entry.Identifier)
	suite.Require().NoError(err)

	first := suite.shortener.Render(resolved, shortenerService.RenderOptions{Style: "monokai", LineNumbers: true})
	suite.Contains(first.HTML, "<pre")
	suite.Equal(1, suite.shortener.cache.Len())

	second := suite.shortener.Render(resolved, shortenerService.RenderOptions{Style: "monokai", LineNumbers: true})
	suite.Equal(first, second)
	suite.Equal(1, suite.shortener.cache.Len())

	suite.shortener.Render(resolved, shortenerService.RenderOptions{Style: "no-such-style"})
	suite.shortener.Render(resolved, shortenerService.RenderOptions{})
	// unknown style falls back to the default one
	suite.Equal(2, suite.shortener.cache.Len())
}

func (suite *ShortenerTestSuite) TestRenderMarkdown() {
	paste, err := suite.shortener.SubmitPaste(suite.ctx, []byte("# Title\n\n*text*\n"))
	suite.Require().NoError(err)
	resolved, err := suite.shortener.Resolve(suite.ctx, paste.Entry.Identifier)
	suite.Require().NoError(err)
	out, err := suite.shortener.RenderMarkdown(resolved)
	suite.Require().NoError(err)
	suite.Contains(out, "<h1>Title</h1>")

	entry, _, err := suite.shortener.SubmitURL(suite.ctx, "https://example.com")
	suite.Require().NoError(err)
	resolved, err = suite.shortener.Resolve(suite.ctx, entry.Identifier)
	suite.Require().NoError(err)
	_, err = suite.shortener.RenderMarkdown(resolved)
	var target *serviceErrors.UnsupportedKindError
	suite.ErrorAs(err, &target)
}

func (suite *ShortenerTestSuite) TestLoadPresets() {
	motd := filepath.Join(suite.T().TempDir(), "motd.txt")
	suite.Require().NoError(os.WriteFile(motd, []byte("welcome\n"), 0o644))
	presets := config.Presets{
		URLs:   map[string]string{"home": "https://example.com", "docs": "https://example.com/docs"},
		Pastes: map[string]string{"motd": motd},
	}
	suite.Require().NoError(suite.shortener.LoadPresets(suite.ctx, presets))
	// loading twice keeps the existing entries
	suite.Require().NoError(suite.shortener.LoadPresets(suite.ctx, presets))

	n, err := suite.storage.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(3), n)

	home, err := suite.shortener.Resolve(suite.ctx, "home")
	suite.Require().NoError(err)
	suite.Equal("https://example.com", home.Entry.Fingerprint)

	resolved, err := suite.shortener.Resolve(suite.ctx, "motd.txt")
	suite.Require().NoError(err)
	suite.Equal([]byte("welcome\n"), resolved.Data)

	// the same payload submitted later reuses the preset identifier
	paste, err := suite.shortener.SubmitPaste(suite.ctx, []byte("welcome\n"))
	suite.Require().NoError(err)
	suite.Equal("motd", paste.Entry.Identifier)
}

func (suite *ShortenerTestSuite) TestLoadPresets_Errors() {
	err := suite.shortener.LoadPresets(suite.ctx, config.Presets{URLs: map[string]string{"a.b": "https://example.com"}})
	suite.Error(err)
	err = suite.shortener.LoadPresets(suite.ctx, config.Presets{Pastes: map[string]string{"x": filepath.Join(suite.T().TempDir(), "missing")}})
	suite.ErrorIs(err, os.ErrNotExist)
}

func (suite *ShortenerTestSuite) TestStyles() {
	names := suite.shortener.Styles()
	suite.Contains(names, "monokai")
	suite.Equal("friendly", suite.shortener.StyleName("unknown"))
	suite.Equal("monokai", suite.shortener.StyleName("monokai"))
}

// Tests with mocked storages

func TestInitShortener(t *testing.T) {
	_, err := InitShortener(nil, nil, testServiceConfig(), nil, nil)
	assert.Equal(t, "nil storage was passed to service initializer", err.Error())

	cfg := testServiceConfig()
	cfg.IdentifierCodec = "base64"
	_, err = InitShortener(inmemory.InitStorage(nil), mocks.NewMockStorage(gomock.NewController(t)), cfg, nil, nil)
	assert.Error(t, err)

	cfg = testServiceConfig()
	cfg.IdentifierCodec = config.CodecHashids
	cfg.HashidsSalt = "salt"
	cfg.RenderCacheSize = 0
	s, err := InitShortener(inmemory.InitStorage(nil), mocks.NewMockStorage(gomock.NewController(t)), cfg, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, s.cache)
}

func TestPingDB(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s := mocks.NewMockEntryStorage(ctrl)
	s.EXPECT().PingDB().Return(nil)
	processor, err := InitShortener(s, mocks.NewMockStorage(ctrl), testServiceConfig(), nil, nil)
	require.NoError(t, err)
	assert.NoError(t, processor.PingDB())
}

func TestSubmitPaste_BlobFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := inmemory.InitStorage(nil)
	b := mocks.NewMockStorage(ctrl)
	b.EXPECT().Store(gomock.Any(), gomock.Any(), []byte("payload")).Return(errors.New("disk full"))
	processor, err := InitShortener(st, b, testServiceConfig(), nil, nil)
	require.NoError(t, err)

	_, err = processor.SubmitPaste(context.Background(), []byte("payload"))
	assert.EqualError(t, err, "disk full")
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestResolve_RecordHitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s := mocks.NewMockEntryStorage(ctrl)
	entry := modelentry.Entry{Identifier: "abc", Kind: modelentry.KindURL, Fingerprint: "https://example.com"}
	s.EXPECT().GetByIdentifier(gomock.Any(), "abc").Return(entry, nil)
	s.EXPECT().RecordHit(gomock.Any(), "abc").Return(errors.New("generic error"))
	processor, err := InitShortener(s, mocks.NewMockStorage(ctrl), testServiceConfig(), nil, nil)
	require.NoError(t, err)
	_, err = processor.Resolve(context.Background(), "abc")
	assert.Equal(t, errors.New("generic error"), err)
}

func TestResolve_BlobFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s := mocks.NewMockEntryStorage(ctrl)
	b := mocks.NewMockStorage(ctrl)
	entry := modelentry.Entry{Identifier: "abc", Kind: modelentry.KindPaste}
	s.EXPECT().GetByIdentifier(gomock.Any(), "abc").Return(entry, nil)
	s.EXPECT().RecordHit(gomock.Any(), "abc").Return(nil)
	b.EXPECT().Fetch(gomock.Any(), "abc").Return(nil, errors.New("timeout"))
	processor, err := InitShortener(s, b, testServiceConfig(), nil, nil)
	require.NoError(t, err)
	_, err = processor.Resolve(context.Background(), "abc.png")
	assert.EqualError(t, err, "timeout")
}

func TestSplitExtension(t *testing.T) {
	tests := []struct {
		in, name, ext string
	}{
		{"abc", "abc", ""},
		{"abc.txt", "abc", ".txt"},
		{"abc.tar.gz", "abc", ".tar.gz"},
		{".txt", "", ".txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, ext := SplitExtension(tt.in)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

// Benchmarks

func BenchmarkSubmitPaste(b *testing.B) {
	blobs, err := infile.InitStorage(&config.StorageConfig{UploadsDir: b.TempDir()}, logger.Discard())
	if err != nil {
		b.Fatal(err)
	}
	processor, err := InitShortener(inmemory.InitStorage(logger.Discard()), blobs, testServiceConfig(), logger.Discard(), nil)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := processor.SubmitPaste(ctx, []byte("paste "+strconv.Itoa(i))); err != nil {
			b.Fatal(err)
		}
	}
}
