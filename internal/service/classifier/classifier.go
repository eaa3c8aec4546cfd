// Package classifier detects the type of stored payloads and renders them for display.
package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gabriel-vasile/mimetype"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
)

// Well-known types produced by the classifier.
const (
	MIMEPlain = "text/plain"
	MIMEJSON  = "application/json"
	MIMEYAML  = "text/x-yaml"
	MIMEBin   = "application/octet-stream"

	ExtensionText = ".txt"
	ExtensionJSON = ".json"
	ExtensionYAML = ".yaml"
)

// extensions takes precedence over the sniffer's own extension guess.
var extensions = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"video/mp4":          ".mp4",
	"text/plain":         ".txt",
	"text/x-c++":         ".cpp",
	"text/x-python":      ".py",
	"text/x-shellscript": ".sh",
	MIMEBin:              ".bin",
}

// textual application types rendered as source code.
var textualApplication = map[string]bool{
	MIMEJSON:                 true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-yaml":     true,
	"application/yaml":       true,
	"application/x-sh":       true,
	"application/toml":       true,
	"application/x-php":      true,
	"application/x-ndjson":   true,
	"application/geo+json":   true,
}

// Type is the detected media type of a payload.
type Type struct {
	MIME      string
	Extension string
}

// Options tune rendering of a single paste.
type Options struct {
	Identifier  string
	Extension   string
	Style       string
	LineNumbers bool
}

// Rendered is an HTML fragment for a payload along with the type it was rendered as.
type Rendered struct {
	HTML      string
	Lexer     string
	MIME      string
	Extension string
}

// Classifier struct defines data structure handling and provides support for adding new implementations.
type Classifier struct {
	defaultStyle string
	markdown     goldmark.Markdown
}

// New creates a Classifier using defaultStyle for unknown style names.
func New(defaultStyle string) *Classifier {
	if styles.Get(defaultStyle).Name != defaultStyle {
		defaultStyle = styles.Fallback.Name
	}
	return &Classifier{
		defaultStyle: defaultStyle,
		markdown:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Classify sniffs the content signature of data.
func (c *Classifier) Classify(data []byte) Type {
	detected := mimetype.Detect(data)
	mime := baseMIME(detected.String())
	if len(data) == 0 || mime == "" {
		mime = MIMEPlain
	}
	return Type{MIME: mime, Extension: Extension(mime, detected.Extension())}
}

// Extension returns the file extension for mime, preferring the fixed table, then guess.
func Extension(mime, guess string) string {
	if ext, ok := extensions[mime]; ok {
		return ext
	}
	if guess != "" {
		return guess
	}
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ExtensionText
}

// IsTextual reports whether mime denotes human readable text.
func IsTextual(mime string) bool {
	mime = baseMIME(mime)
	return strings.HasPrefix(mime, "text/") || strings.HasPrefix(mime, "message/") ||
		textualApplication[mime] || strings.HasSuffix(mime, "+json") || strings.HasSuffix(mime, "+xml")
}

// Render produces an HTML fragment for data. It never fails: anything that cannot be highlighted
// is offered as a download.
func (c *Classifier) Render(data []byte, mime string, opts Options) Rendered {
	mime = baseMIME(mime)
	ext := opts.Extension
	if ext == "" {
		ext = Extension(mime, "")
	}
	id := html.EscapeString(opts.Identifier)
	switch {
	case IsTextual(mime) && utf8.Valid(data):
		return c.renderText(data, mime, ext, opts)
	case strings.HasPrefix(mime, "image/"):
		return Rendered{
			HTML:      fmt.Sprintf(`<div class="thumbnail text-center"><img src="/raw/%s" class="img-responsive"></div>`, id),
			MIME:      mime,
			Extension: ext,
		}
	case strings.HasPrefix(mime, "video/"):
		return Rendered{
			HTML:      fmt.Sprintf(`<div class="thumbnail text-center"><video controls><source src="/raw/%s" type="%s" class="embed-responsive"></video></div>`, id, html.EscapeString(mime)),
			MIME:      mime,
			Extension: ext,
		}
	}
	return Rendered{HTML: downloadLink(id, ext), MIME: mime, Extension: ext}
}

func (c *Classifier) renderText(data []byte, mime, ext string, opts Options) Rendered {
	text, mime, ext, lexer := prepare(data, mime, ext)
	body, err := c.highlight(lexer, text, opts.Style, opts.LineNumbers)
	if err != nil {
		body = "<pre>" + html.EscapeString(text) + "</pre>"
	}
	return Rendered{HTML: body, Lexer: lexer.Config().Name, MIME: mime, Extension: ext}
}

// prepare canonicalizes structured payloads and picks a lexer for the text.
func prepare(data []byte, mime, ext string) (string, string, string, chroma.Lexer) {
	text := string(data)
	var lexer chroma.Lexer
	switch {
	case (mime == MIMEPlain || mime == MIMEJSON) && isJSONContainer(data):
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(data), "", "    "); err == nil {
			text = buf.String()
			mime, ext = MIMEJSON, ExtensionJSON
			lexer = lexers.Get("json")
		}
	case mime == MIMEPlain:
		if block, ok := yamlContainer(data); ok {
			text = block
			mime, ext = MIMEYAML, ExtensionYAML
			lexer = lexers.Get("yaml")
		}
	}
	if lexer == nil && mime != MIMEPlain {
		lexer = lexers.MatchMimeType(mime)
	}
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return text, mime, ext, chroma.Coalesce(lexer)
}

func (c *Classifier) highlight(lexer chroma.Lexer, text, styleName string, lineNumbers bool) (string, error) {
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithLineNumbers(lineNumbers), chromahtml.TabWidth(4))
	if err := formatter.Format(&buf, c.Style(styleName), iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Style resolves a highlight style by name, falling back to the default style.
func (c *Classifier) Style(name string) *chroma.Style {
	if style := styles.Get(name); style.Name == name {
		return style
	}
	return styles.Get(c.defaultStyle)
}

// StyleName returns the name of the style Render would use for name.
func (c *Classifier) StyleName(name string) string {
	return c.Style(name).Name
}

// Styles lists the available highlight styles.
func (c *Classifier) Styles() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

// RenderMarkdown converts a UTF-8 markdown payload into HTML.
func (c *Classifier) RenderMarkdown(identifier string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &serviceErrors.NotMarkdownError{Identifier: identifier}
	}
	var buf bytes.Buffer
	if err := c.markdown.Convert(data, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func isJSONContainer(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid(trimmed)
}

// yamlContainer re-serializes a YAML mapping or sequence in block style.
func yamlContainer(data []byte) (string, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return "", false
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode && root.Kind != yaml.SequenceNode {
		return "", false
	}
	blockStyle(root)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", false
	}
	if err := enc.Close(); err != nil {
		return "", false
	}
	return buf.String(), true
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func downloadLink(id, ext string) string {
	return fmt.Sprintf(`<div class="btn-toolbar" style="text-align: center"><a href="/raw/%s%s" class="btn btn-primary">Download</a></div>`,
		id, html.EscapeString(ext))
}

func baseMIME(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
