// Package modelentry provides locally used types and their structure for entry handling between modules.
package modelentry

import (
	"fmt"
	"strings"
	"time"
)

// Kind defines what an entry points to.
type Kind string

const (
	KindURL   Kind = "url"
	KindPaste Kind = "paste"
)

// ParseKind converts a raw kind string into a Kind, rejecting anything other than url and paste.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindURL, KindPaste:
		return k, nil
	default:
		return "", fmt.Errorf("unsupported kind %q", s)
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindURL || k == KindPaste
}

func (k Kind) String() string {
	return string(k)
}

// Entry is a single minted identifier together with its usage metadata.
type Entry struct {
	ID          int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Hits        int64
	Kind        Kind
	Identifier  string
	Fingerprint string
}

// NewEntry holds the caller-provided fields of an entry to be inserted.
type NewEntry struct {
	Identifier  string
	Fingerprint string
	Kind        Kind
}
