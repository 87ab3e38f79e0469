package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v77/github"
)

// GitHubSource loads a repository's README and issues as documents.
// A token is optional but raises rate limits and grants access to
// private repositories.
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubSource creates a GitHub source for owner/repo.
func NewGitHubSource(owner, repo, token string) *GitHubSource {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubSource{client: client, owner: owner, repo: repo}
}

// Name identifies this source kind.
func (s *GitHubSource) Name() string {
	return "github"
}

// Load fetches the README and all issues (pull requests excluded).
func (s *GitHubSource) Load(ctx context.Context) ([]Document, error) {
	var documents []Document

	readme, err := s.loadReadme(ctx)
	if err == nil && readme != nil {
		documents = append(documents, *readme)
	}

	issues, err := s.loadIssues(ctx)
	if err != nil {
		return nil, err
	}
	documents = append(documents, issues...)

	if len(documents) == 0 {
		return nil, fmt.Errorf("%w for %s/%s", ErrNoDocuments, s.owner, s.repo)
	}

	return documents, nil
}

// loadReadme fetches the repository README. A missing README is not an error.
func (s *GitHubSource) loadReadme(ctx context.Context) (*Document, error) {
	readme, _, err := s.client.Repositories.GetReadme(ctx, s.owner, s.repo, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch README: %w", err)
	}
	content, err := readme.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode README: %w", err)
	}
	location := fmt.Sprintf("github.com/%s/%s#readme", s.owner, s.repo)
	return &Document{
		ID:     HashID(location),
		Source: location,
		Text:   content,
		Metadata: map[string]string{
			"repository": s.owner + "/" + s.repo,
			"kind":       "readme",
		},
	}, nil
}

// loadIssues fetches all issues with pagination, skipping pull requests
// (GitHub's issue listing includes PRs).
func (s *GitHubSource) loadIssues(ctx context.Context) ([]Document, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var documents []Document
	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}

		for _, issue := range issues {
			if issue == nil || issue.IsPullRequest() {
				continue
			}
			doc := issueDocument(s.owner, s.repo, issue)
			if strings.TrimSpace(doc.Text) == "" {
				continue
			}
			documents = append(documents, doc)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	return documents, nil
}

func issueDocument(owner, repo string, issue *github.Issue) Document {
	var b strings.Builder
	b.WriteString(issue.GetTitle())
	if body := issue.GetBody(); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	location := fmt.Sprintf("github.com/%s/%s/issues/%d", owner, repo, issue.GetNumber())
	return Document{
		ID:     HashID(location),
		Source: location,
		Text:   b.String(),
		Metadata: map[string]string{
			"repository": owner + "/" + repo,
			"kind":       "issue",
			"number":     strconv.Itoa(issue.GetNumber()),
			"state":      issue.GetState(),
			"author":     issue.GetUser().GetLogin(),
		},
	}
}
