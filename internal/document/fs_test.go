package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestFSSourceLoadsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "First file. Two sentences.")
	writeTestFile(t, dir, "sub/b.md", "# Heading\n\nSome markdown.")
	writeTestFile(t, dir, "c.json", `{"skipped": true}`)

	source := NewFSSource(dir)
	docs, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	byName := make(map[string]Document)
	for _, doc := range docs {
		byName[doc.Metadata["filename"]] = doc
	}
	if byName["a.txt"].Text != "First file. Two sentences." {
		t.Errorf("unexpected content for a.txt: %q", byName["a.txt"].Text)
	}
	if byName["b.md"].Metadata["extension"] != ".md" {
		t.Errorf("expected .md extension metadata, got %q", byName["b.md"].Metadata["extension"])
	}
}

func TestFSSourceSkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "visible.txt", "kept")
	writeTestFile(t, dir, ".git/config.txt", "ignored")

	docs, err := NewFSSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].Metadata["filename"] != "visible.txt" {
		t.Errorf("expected only visible.txt, got %+v", docs)
	}
}

func TestFSSourceCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.rst", "restructured text")
	writeTestFile(t, dir, "other.txt", "plain text")

	// Extension given without the leading dot still matches.
	docs, err := NewFSSource(dir, "rst").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].Metadata["filename"] != "notes.rst" {
		t.Errorf("expected only notes.rst, got %+v", docs)
	}
}

func TestFSSourceNoDocuments(t *testing.T) {
	_, err := NewFSSource(t.TempDir()).Load(context.Background())
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestFSSourceMissingRoot(t *testing.T) {
	_, err := NewFSSource(filepath.Join(t.TempDir(), "missing")).Load(context.Background())
	if err == nil {
		t.Error("expected error for missing root directory")
	}
}

func TestFSSourceStableIDs(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "content")

	source := NewFSSource(dir)
	first, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("expected stable IDs across loads, got %q and %q", first[0].ID, second[0].ID)
	}
	if first[0].ID == "" {
		t.Error("expected non-empty document ID")
	}
}

func TestHashIDDistinctSources(t *testing.T) {
	a := HashID("/path/a.txt")
	b := HashID("/path/b.txt")
	if a == b {
		t.Error("expected distinct IDs for distinct sources")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex characters, got %d", len(a))
	}
}
