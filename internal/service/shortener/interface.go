// Package shortener provides interfaces for types to be in compliance with.
package shortener

import (
	"context"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/classifier"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/modelentry"
)

// Paste is the outcome of a paste submission.
type Paste struct {
	Entry   modelentry.Entry
	Type    classifier.Type
	Created bool
}

// Resolved is an entry reached through a lookup. Data and Type are only set for pastes.
type Resolved struct {
	Entry modelentry.Entry
	Data  []byte
	Type  classifier.Type
	// Extension is the suffix the identifier was requested with, if any.
	Extension string
}

// RenderOptions tune the HTML rendering of a paste.
type RenderOptions struct {
	Style       string
	LineNumbers bool
}

// Submitter defines a set of methods for types implementing Submitter.
type Submitter interface {
	SubmitURL(ctx context.Context, rawURL string) (modelentry.Entry, bool, error)
	SubmitPaste(ctx context.Context, data []byte) (Paste, error)
}

// Resolver defines a set of methods for types implementing Resolver.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (Resolved, error)
	Stats(ctx context.Context, identifier string) (modelentry.Entry, error)
}

// Renderer defines a set of methods for types implementing Renderer.
type Renderer interface {
	Render(resolved Resolved, opts RenderOptions) classifier.Rendered
	RenderMarkdown(resolved Resolved) (string, error)
	Styles() []string
	StyleName(name string) string
}

// Processor defines a set of embedded interfaces for types implementing Processor.
type Processor interface {
	Submitter
	Resolver
	Renderer
	LoadPresets(ctx context.Context, presets config.Presets) error
	PingDB() error
}
