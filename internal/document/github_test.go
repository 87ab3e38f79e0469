package document

import (
	"testing"

	"github.com/google/go-github/v77/github"
)

func TestIssueDocument(t *testing.T) {
	issue := &github.Issue{
		Number: github.Ptr(42),
		Title:  github.Ptr("Crash on empty input"),
		Body:   github.Ptr("Steps to reproduce. Run with no arguments."),
		State:  github.Ptr("open"),
		User:   &github.User{Login: github.Ptr("octocat")},
	}

	doc := issueDocument("acme", "widget", issue)

	if doc.Source != "github.com/acme/widget/issues/42" {
		t.Errorf("unexpected source %q", doc.Source)
	}
	if doc.ID != HashID(doc.Source) {
		t.Error("expected ID derived from source location")
	}
	want := "Crash on empty input\n\nSteps to reproduce. Run with no arguments."
	if doc.Text != want {
		t.Errorf("unexpected text %q", doc.Text)
	}
	if doc.Metadata["number"] != "42" || doc.Metadata["state"] != "open" || doc.Metadata["author"] != "octocat" {
		t.Errorf("unexpected metadata %+v", doc.Metadata)
	}
}

func TestIssueDocumentTitleOnly(t *testing.T) {
	issue := &github.Issue{
		Number: github.Ptr(7),
		Title:  github.Ptr("Tracking issue"),
	}

	doc := issueDocument("acme", "widget", issue)
	if doc.Text != "Tracking issue" {
		t.Errorf("expected bare title text, got %q", doc.Text)
	}
}

func TestGitHubSourceName(t *testing.T) {
	source := NewGitHubSource("acme", "widget", "")
	if source.Name() != "github" {
		t.Errorf("unexpected name %q", source.Name())
	}
}
