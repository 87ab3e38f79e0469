package document

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
)

// Common errors for git loading
var (
	ErrRepositoryOpen = errors.New("failed to open repository")
)

// GitSource loads text documents from the HEAD worktree of a git repository.
// The repository may be a local path or a remote URL; remote repositories
// are cloned into memory.
type GitSource struct {
	repo       string
	extensions map[string]bool
}

// NewGitSource creates a git source for the given local path or remote URL.
func NewGitSource(repo string, extensions ...string) *GitSource {
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
	return &GitSource{repo: repo, extensions: extSet}
}

// Name identifies this source kind.
func (s *GitSource) Name() string {
	return "git"
}

// Load reads matching files from the repository's HEAD commit tree.
func (s *GitSource) Load(ctx context.Context) ([]Document, error) {
	repo, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryOpen, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load commit tree: %w", err)
	}

	commitHash := head.Hash().String()

	var documents []Document
	err = tree.Files().ForEach(func(file *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ext := strings.ToLower(path.Ext(file.Name))
		if !s.extensions[ext] {
			return nil
		}
		if isBinary, _ := file.IsBinary(); isBinary {
			return nil
		}
		contents, err := file.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		location := s.repo + "//" + file.Name
		documents = append(documents, Document{
			ID:     HashID(location),
			Source: location,
			Text:   contents,
			Metadata: map[string]string{
				"repository": s.repo,
				"path":       file.Name,
				"commit":     commitHash,
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tree files: %w", err)
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, s.repo)
	}

	return documents, nil
}

// open resolves the repository as a local path first, then as a remote URL.
func (s *GitSource) open(ctx context.Context) (*git.Repository, error) {
	if repo, err := git.PlainOpen(s.repo); err == nil {
		return repo, nil
	}
	return git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:   s.repo,
		Depth: 1,
	})
}
