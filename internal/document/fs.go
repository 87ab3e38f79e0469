package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Common errors for filesystem loading
var (
	ErrNoDocuments = errors.New("no documents found")
)

// defaultExtensions are the file extensions loaded when none are configured.
var defaultExtensions = []string{".txt", ".md"}

// FSSource loads plain-text documents from a directory tree.
type FSSource struct {
	root       string
	extensions map[string]bool
}

// NewFSSource creates a filesystem source rooted at the given directory.
// Only files with the provided extensions are loaded; when no extensions
// are given, .txt and .md files are loaded.
func NewFSSource(root string, extensions ...string) *FSSource {
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[strings.ToLower(ext)] = true
	}
	return &FSSource{root: root, extensions: extSet}
}

// Name identifies this source kind.
func (s *FSSource) Name() string {
	return "fs"
}

// Load walks the root directory and returns one document per matching file.
func (s *FSSource) Load(ctx context.Context) ([]Document, error) {
	var documents []Document

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !s.extensions[ext] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		documents = append(documents, Document{
			ID:     HashID(path),
			Source: path,
			Text:   string(data),
			Metadata: map[string]string{
				"filename":  d.Name(),
				"extension": ext,
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.root, err)
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoDocuments, s.root)
	}

	return documents, nil
}
