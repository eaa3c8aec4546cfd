// Package handlers provides http.HandlerFunc handler functions to be used for endpoints.
package handlers

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"github.com/danilovkiri/dk_go_pastebin/internal/api/rest/modeldto"
	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	serviceErrors "github.com/danilovkiri/dk_go_pastebin/internal/service/errors"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
	storageErrors "github.com/danilovkiri/dk_go_pastebin/internal/storage/errors"
)

const (
	requestTimeout  = 10 * time.Second
	multipartMemory = 8 << 20
	kindBase64      = "base64"
	robots          = "# Block Webcrawlers\nUser-agent: *\nDisallow: /\n"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.tmpl"))

// URLHandler defines data structure handling and provides support for adding new implementations.
type URLHandler struct {
	processor    shortener.Processor
	serverConfig config.ServerConfig
	log          *slog.Logger
}

// InitURLHandler initializes a URLHandler object and sets its attributes.
func InitURLHandler(processor shortener.Processor, serverConfig config.ServerConfig, log *slog.Logger) (*URLHandler, error) {
	if processor == nil {
		return nil, fmt.Errorf("nil Shortener Service was passed to service URL Handler initializer")
	}
	if log == nil {
		log = slog.Default()
	}
	return &URLHandler{processor: processor, serverConfig: serverConfig, log: log.With("component", "rest")}, nil
}

type pastePage struct {
	Name        string
	Extension   string
	MIME        string
	Style       string
	Styles      []string
	LineNumbers bool
	Content     template.HTML
}

type submittedPage struct {
	Name       string
	PreviewURL string
	RawURL     string
}

// HandleIndex renders the landing page.
func (h *URLHandler) HandleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderIndex(w)
	}
}

// HandleRobots forbids crawling.
func (h *URLHandler) HandleRobots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, robots)
	}
}

// HandleGet redirects to the target of a url entry or shows a paste. With ?raw=1 the paste is
// returned as is.
func (h *URLHandler) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveEntry(w, r, isTrue(r.URL.Query().Get("raw")))
	}
}

// HandleGetRaw returns the stored bytes of a paste.
func (h *URLHandler) HandleGetRaw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveEntry(w, r, true)
	}
}

func (h *URLHandler) serveEntry(w http.ResponseWriter, r *http.Request, raw bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	resolved, err := h.processor.Resolve(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if resolved.Entry.Kind == modelentry.KindURL {
		http.Redirect(w, r, resolved.Entry.Fingerprint, http.StatusFound)
		return
	}
	if raw {
		w.Header().Set("Content-Type", resolved.Type.MIME)
		w.Header().Set("Content-Length", strconv.Itoa(len(resolved.Data)))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		_, _ = w.Write(resolved.Data)
		return
	}
	opts := shortener.RenderOptions{
		Style:       r.URL.Query().Get("style"),
		LineNumbers: isTrue(r.URL.Query().Get("linenos")),
	}
	rendered := h.processor.Render(resolved, opts)
	h.renderTemplate(w, "paste", pastePage{
		Name:        resolved.Entry.Identifier,
		Extension:   rendered.Extension,
		MIME:        rendered.MIME,
		Style:       h.processor.StyleName(opts.Style),
		Styles:      h.processor.Styles(),
		LineNumbers: opts.LineNumbers,
		Content:     template.HTML(rendered.HTML),
	})
}

// HandleGetMarkdown renders a paste as markdown. Links fall back to the landing page.
func (h *URLHandler) HandleGetMarkdown() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		resolved, err := h.processor.Resolve(ctx, chi.URLParam(r, "id"))
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if resolved.Entry.Kind != modelentry.KindPaste {
			h.renderIndex(w)
			return
		}
		out, err := h.processor.RenderMarkdown(resolved)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		h.renderTemplate(w, "paste", pastePage{
			Name:      resolved.Entry.Identifier,
			Extension: ".md",
			MIME:      "text/markdown",
			Style:     h.processor.StyleName(""),
			Styles:    h.processor.Styles(),
			Content:   template.HTML(out),
		})
	}
}

// HandlePost stores a link or a paste named by the kind path parameter. The payload is the request
// body, the multipart field source (answered with an HTML page) or file, or for base64 the
// encoded form field image. forceRaw answers paste submissions with the raw link.
func (h *URLHandler) HandlePost(forceRaw bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		r.Body = http.MaxBytesReader(w, r.Body, h.serverConfig.MaxUploadBytes)

		rawKind := chi.URLParam(r, "kind")
		useTemplate := false
		var data []byte
		var err error
		if rawKind == kindBase64 {
			if err = parseForm(r); err != nil {
				h.handleError(w, r, err)
				return
			}
			data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(r.FormValue("image")))
			if err != nil {
				h.handleError(w, r, &badRequestError{msg: "image is not valid base64"})
				return
			}
			rawKind = modelentry.KindPaste.String()
		} else {
			data, useTemplate, err = readPayload(r)
			if err != nil {
				h.handleError(w, r, err)
				return
			}
		}
		kind, err := modelentry.ParseKind(rawKind)
		if err != nil {
			h.handleError(w, r, &serviceErrors.UnsupportedKindError{Kind: rawKind})
			return
		}

		var (
			entry   modelentry.Entry
			created bool
			rawURL  string
		)
		switch kind {
		case modelentry.KindURL:
			entry, created, err = h.processor.SubmitURL(ctx, string(data))
		case modelentry.KindPaste:
			var paste shortener.Paste
			paste, err = h.processor.SubmitPaste(ctx, data)
			entry, created = paste.Entry, paste.Created
			rawURL = h.serverConfig.BaseURL + "/raw/" + entry.Identifier + paste.Type.Extension
		}
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		previewURL := h.serverConfig.BaseURL + "/" + entry.Identifier
		h.log.Info("entry submitted", "identifier", entry.Identifier, "kind", kind, "created", created)

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		if useTemplate {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			h.executeTemplate(w, "url", submittedPage{Name: entry.Identifier, PreviewURL: previewURL, RawURL: rawURL})
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		if rawURL != "" && (forceRaw || isTrue(r.URL.Query().Get("raw"))) {
			_, _ = io.WriteString(w, rawURL)
			return
		}
		_, _ = io.WriteString(w, previewURL+"\n")
	}
}

// HandleGetStats returns entry metadata without counting a hit.
func (h *URLHandler) HandleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		entry, err := h.processor.Stats(ctx, chi.URLParam(r, "id"))
		if err != nil {
			var unknown *serviceErrors.UnknownIdentifierError
			if errors.As(err, &unknown) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			h.handleError(w, r, err)
			return
		}
		h.writeJSON(w, modeldto.ResponseStats{
			Identifier: entry.Identifier,
			Kind:       entry.Kind.String(),
			Hits:       entry.Hits,
			CreatedAt:  entry.CreatedAt,
			ModifiedAt: entry.ModifiedAt,
			URL:        h.serverConfig.BaseURL + "/" + entry.Identifier,
		})
	}
}

// HandleGetStyles lists the highlight styles accepted by ?style=.
func (h *URLHandler) HandleGetStyles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, modeldto.ResponseStyles{Default: h.processor.StyleName(""), Styles: h.processor.Styles()})
	}
}

// HandlePingDB checks the entry storage connection.
func (h *URLHandler) HandlePingDB() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.processor.PingDB(); err != nil {
			h.log.Error("pinging storage", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

// readPayload extracts the submitted bytes and reports whether the answer should be an HTML page.
// parseForm reads url-encoded or multipart forms, keeping body read errors such as
// *http.MaxBytesError that FormValue would discard.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

func readPayload(r *http.Request) ([]byte, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return data, false, err
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, false, err
	}
	for _, field := range []string{"source", "file"} {
		if files := r.MultipartForm.File[field]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return nil, false, err
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			return data, field == "source", err
		}
		if values := r.MultipartForm.Value[field]; len(values) > 0 {
			return []byte(values[0]), field == "source", nil
		}
	}
	return nil, false, &serviceErrors.EmptyPayloadError{}
}

func (h *URLHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unknown    *serviceErrors.UnknownIdentifierError
		timeout    *storageErrors.ContextTimeoutExceededError
		badURL     *serviceErrors.ServiceIncorrectInputURL
		empty      *serviceErrors.EmptyPayloadError
		badRequest *badRequestError
		kind       *serviceErrors.UnsupportedKindError
		notMD      *serviceErrors.NotMarkdownError
		removed    *serviceErrors.ContentRemovedError
		exhausted  *serviceErrors.AllocationExhaustedError
		tooLarge   *http.MaxBytesError
	)
	code, msg := http.StatusInternalServerError, err.Error()
	switch {
	case errors.As(err, &unknown):
		h.renderIndex(w)
		return
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.As(err, &badURL), errors.As(err, &empty), errors.As(err, &badRequest):
		code = http.StatusBadRequest
	case errors.As(err, &kind):
		code, msg = http.StatusMethodNotAllowed, fmt.Sprintf("Could not post to %s", kind.Kind)
	case errors.As(err, &notMD):
		code, msg = http.StatusMethodNotAllowed, "Requested resource is not a Markdown file"
	case errors.As(err, &removed):
		code, msg = http.StatusGone, "Upload has been removed"
	case errors.As(err, &tooLarge):
		code = http.StatusRequestEntityTooLarge
	case errors.As(err, &exhausted):
		msg = "Could not produce new database entry"
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("handling request", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug("handling request", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, msg, code)
}

func (h *URLHandler) renderIndex(w http.ResponseWriter) {
	h.renderTemplate(w, "index", struct{ BaseURL string }{BaseURL: h.serverConfig.BaseURL})
}

func (h *URLHandler) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.executeTemplate(w, name, data)
}

func (h *URLHandler) executeTemplate(w io.Writer, name string, data any) {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("executing template", "template", name, "error", err)
	}
}

func (h *URLHandler) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func isTrue(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
