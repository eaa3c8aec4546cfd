package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestClassifier_Classify(t *testing.T) {
	c := New("friendly")
	tests := []struct {
		name string
		data []byte
		want Type
	}{
		{name: "plain text", data: []byte("hello world\n"), want: Type{MIME: MIMEPlain, Extension: ".txt"}},
		{name: "empty", data: nil, want: Type{MIME: MIMEPlain, Extension: ".txt"}},
		{name: "png", data: pngHeader, want: Type{MIME: "image/png", Extension: ".png"}},
		{name: "jpeg", data: []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), want: Type{MIME: "image/jpeg", Extension: ".jpg"}},
		{name: "json", data: []byte(`{"a": [1, 2]}`), want: Type{MIME: MIMEJSON, Extension: ".json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.data))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".cpp", Extension("text/x-c++", ".cc"))
	assert.Equal(t, ".sh", Extension("text/x-shellscript", ""))
	assert.Equal(t, ".gif", Extension("image/gif", ".gif"))
	assert.Equal(t, ".txt", Extension("application/x-unheard-of", ""))
}

func TestIsTextual(t *testing.T) {
	for _, mime := range []string{"text/plain", "text/x-python; charset=utf-8", "message/rfc822", "application/json", "application/ld+json", "image/svg+xml"} {
		assert.True(t, IsTextual(mime), mime)
	}
	for _, mime := range []string{"image/png", "video/mp4", "application/octet-stream", "application/pdf"} {
		assert.False(t, IsTextual(mime), mime)
	}
}

func TestPrepare_JSONArray(t *testing.T) {
	text, mime, ext, lexer := prepare([]byte(`[1, {"b": 1, "a": 2}]`), MIMEJSON, ".json")
	assert.Equal(t, "[\n    1,\n    {\n        \"b\": 1,\n        \"a\": 2\n    }\n]", text)
	assert.Equal(t, MIMEJSON, mime)
	assert.Equal(t, ExtensionJSON, ext)
	assert.Equal(t, "JSON", lexer.Config().Name)
}

func TestPrepare_JSONInPlainText(t *testing.T) {
	text, mime, ext, _ := prepare([]byte("  {\"k\":\"v\"}\n"), MIMEPlain, ".txt")
	assert.Equal(t, "{\n    \"k\": \"v\"\n}", text)
	assert.Equal(t, MIMEJSON, mime)
	assert.Equal(t, ExtensionJSON, ext)
}

func TestPrepare_YAML(t *testing.T) {
	text, mime, ext, lexer := prepare([]byte("b: 1\na: [x, y]\n"), MIMEPlain, ".txt")
	assert.Equal(t, MIMEYAML, mime)
	assert.Equal(t, ExtensionYAML, ext)
	assert.Equal(t, "YAML", lexer.Config().Name)
	assert.NotContains(t, text, "[")
	assert.Contains(t, text, "- x")
	assert.Less(t, strings.Index(text, "b:"), strings.Index(text, "a:"))
}

func TestPrepare_Scalars(t *testing.T) {
	for _, payload := range []string{"42", `"just a string"`, "hello world", "true"} {
		text, mime, ext, _ := prepare([]byte(payload), MIMEPlain, ".txt")
		assert.Equal(t, payload, text)
		assert.Equal(t, MIMEPlain, mime)
		assert.Equal(t, ".txt", ext)
	}
}

func TestPrepare_LexerByMIME(t *testing.T) {
	_, _, _, lexer := prepare([]byte("print('hi')\n"), "text/x-python", ".py")
	assert.Contains(t, strings.ToLower(lexer.Config().Name), "python")
}

func TestClassifier_Render(t *testing.T) {
	c := New("friendly")

	r := c.Render([]byte(`[3, 2, 1]`), MIMEJSON, Options{Identifier: "abc", Extension: ".json"})
	assert.Equal(t, "JSON", r.Lexer)
	assert.Equal(t, MIMEJSON, r.MIME)
	assert.Contains(t, r.HTML, "<pre")

	r = c.Render(pngHeader, "image/png", Options{Identifier: "abc", Extension: ".png"})
	assert.Contains(t, r.HTML, `<img src="/raw/abc"`)
	assert.Empty(t, r.Lexer)

	r = c.Render([]byte("...."), "video/mp4", Options{Identifier: "abc", Extension: ".mp4"})
	assert.Contains(t, r.HTML, `<source src="/raw/abc" type="video/mp4"`)

	r = c.Render([]byte{0, 1, 2, 0xfe}, MIMEBin, Options{Identifier: "abc"})
	assert.Contains(t, r.HTML, `href="/raw/abc.bin"`)

	r = c.Render([]byte("caf\xe9"), MIMEPlain, Options{Identifier: "abc", Extension: ".txt"})
	assert.Contains(t, r.HTML, `href="/raw/abc.txt"`)
	assert.Equal(t, MIMEPlain, r.MIME)
}

func TestClassifier_RenderOptions(t *testing.T) {
	c := New("friendly")
	data := []byte("line one\nline two\n")
	plain := c.Render(data, MIMEPlain, Options{Identifier: "a", Style: "no-such-style"})
	numbered := c.Render(data, MIMEPlain, Options{Identifier: "a", LineNumbers: true})
	assert.NotEmpty(t, plain.HTML)
	assert.NotEqual(t, plain.HTML, numbered.HTML)
}

func TestClassifier_Style(t *testing.T) {
	c := New("friendly")
	assert.Equal(t, "friendly", c.StyleName("no-such-style"))
	assert.Equal(t, "monokai", c.StyleName("monokai"))
	assert.Contains(t, c.Styles(), "monokai")

	c = New("no-such-default")
	assert.NotEmpty(t, c.StyleName("still-missing"))
}

func TestClassifier_RenderMarkdown(t *testing.T) {
	c := New("friendly")
	out, err := c.RenderMarkdown("abc", []byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<table>")

	_, err = c.RenderMarkdown("abc", []byte("\xff\xfe"))
	var notMarkdown *serviceErrors.NotMarkdownError
	assert.ErrorAs(t, err, &notMarkdown)
}

func BenchmarkClassifier_Render(b *testing.B) {
	c := New("friendly")
	data := []byte(`{"name": "pastebin", "tags": ["a", "b"], "nested": {"k": 1}}`)
	for i := 0; i < b.N; i++ {
		_ = c.Render(data, MIMEJSON, Options{Identifier: "bench"})
	}
}
