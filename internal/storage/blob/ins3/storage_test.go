package ins3

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilovkiri/dk_go_pastebin/internal/logger"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob"
)

// mockRoundTripper provides a tiny fake S3 subset sufficient to exercise the adapter without network access.
type mockRoundTripper struct {
	mu    sync.Mutex
	state map[string][]byte
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.TrimPrefix(req.URL.Path, "/")
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			if dec, ok := decodeChunked(body); ok {
				body = dec
			}
		}
		m.state[key] = body
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	case http.MethodGet:
		if body, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
				"Content-Length": {strconv.Itoa(len(body))},
				"ETag":           {"\"etag\""},
			}}, nil
		}
		body := "<?xml version=\"1.0\" encoding=\"UTF-8\"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>"
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{
			"Content-Type": {"application/xml"},
		}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

// decodeChunked decodes an aws-chunked payload: <hex size>[;ext]\r\n<data>\r\n ... 0\r\n<trailers>.
func decodeChunked(b []byte) ([]byte, bool) {
	r := bufio.NewReader(bytes.NewReader(b))
	var out bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, false
		}
		line = strings.TrimRight(line, "\r\n")
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		size, err := strconv.ParseInt(line, 16, 64)
		if err != nil {
			return nil, false
		}
		if size == 0 {
			return out.Bytes(), true
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return nil, false
		}
		if _, err := r.Discard(2); err != nil {
			return nil, false
		}
	}
}

func newMockStorage(t *testing.T, prefix string) (*Storage, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string][]byte)}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, Options("https://mock.s3.local", true), func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.RetryMaxAttempts = 1
	})
	return NewStorage(client, "test-bucket", prefix, logger.Discard()), rt
}

func TestStorage_StoreFetch(t *testing.T) {
	st, rt := newMockStorage(t, "pastes/")
	ctx := context.Background()
	payload := []byte("print('hello')\n")

	require.NoError(t, st.Store(ctx, "abc", payload))
	assert.Contains(t, rt.state, "test-bucket/pastes/abc")

	got, err := st.Fetch(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStorage_FetchMissing(t *testing.T) {
	st, _ := newMockStorage(t, "")
	_, err := st.Fetch(context.Background(), "missing")
	var notFound *blob.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStorage_InvalidKey(t *testing.T) {
	st, rt := newMockStorage(t, "")
	var invalid *blob.InvalidKeyError
	assert.ErrorAs(t, st.Store(context.Background(), "a/b", []byte("x")), &invalid)
	assert.Empty(t, rt.state)
}

func TestDecodeChunked(t *testing.T) {
	payload := "line one\r\nline two"
	encoded := strconv.FormatInt(int64(len(payload)), 16) + ";chunk-signature=abc\r\n" + payload + "\r\n0\r\nx-amz-checksum-crc32:AAAAAA==\r\n\r\n"
	got, ok := decodeChunked([]byte(encoded))
	require.True(t, ok)
	assert.Equal(t, payload, string(got))

	_, ok = decodeChunked([]byte("not chunked"))
	assert.False(t, ok)
}

func TestOptions(t *testing.T) {
	o := s3.Options{}
	Options("http://minio:9000", true)(&o)
	assert.True(t, o.UsePathStyle)
	assert.Equal(t, "http://minio:9000", aws.ToString(o.BaseEndpoint))
	assert.Equal(t, aws.RequestChecksumCalculationWhenRequired, o.RequestChecksumCalculation)
}
