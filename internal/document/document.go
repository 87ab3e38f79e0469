// Package document defines the document model consumed by the window node
// parser and the sources that load documents from the filesystem, git
// repositories, and GitHub.
package document

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// Document is a single unit of raw text loaded from a source.
// Documents are immutable once loaded.
type Document struct {
	// ID is a stable identifier derived from the source location
	ID string `json:"id"`

	// Source is the human-readable origin (file path, repo URL, issue URL)
	Source string `json:"source"`

	// Text is the raw document content
	Text string `json:"text"`

	// Metadata carries arbitrary source-specific attributes
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Source loads documents from some backing location.
// Implementations must be safe for one-shot use; Load may be called
// multiple times and should return a fresh snapshot each call.
type Source interface {
	// Name identifies the source kind (e.g. "fs", "git", "github")
	Name() string

	// Load returns all documents available from this source
	Load(ctx context.Context) ([]Document, error)
}

// HashID derives a stable document identifier from a source location.
func HashID(source string) string {
	h := sha1.Sum([]byte(source))
	return hex.EncodeToString(h[:8])
}
