package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/winnowhq/winnow/internal/config"
	"github.com/winnowhq/winnow/internal/document"
	"github.com/winnowhq/winnow/internal/pipeline"
)

// loadAppConfig resolves the config file from the --config flag or the
// default search paths.
func loadAppConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildSource maps a location argument to a document source:
//
//	github:owner/repo        GitHub readme and issues
//	https://... or *.git     git repository (cloned in memory if remote)
//	anything else            local directory tree
func buildSource(location string) (document.Source, error) {
	if rest, ok := strings.CutPrefix(location, "github:"); ok {
		owner, repo, ok := strings.Cut(rest, "/")
		if !ok || owner == "" || repo == "" {
			return nil, fmt.Errorf("invalid GitHub location %q, expected github:owner/repo", location)
		}
		return document.NewGitHubSource(owner, repo, os.Getenv("GITHUB_TOKEN")), nil
	}

	if strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "https://") ||
		strings.HasPrefix(location, "git@") ||
		strings.HasSuffix(location, ".git") {
		return document.NewGitSource(location), nil
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("cannot read location %q: %w", location, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("location %q is not a directory", location)
	}
	return document.NewFSSource(location), nil
}

// newPipeline builds a pipeline from the resolved config plus command
// flag overrides.
func newPipeline(ctx context.Context, overrides func(*pipeline.Config)) (*pipeline.Pipeline, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	pc := cfg.Pipeline()
	if overrides != nil {
		overrides(&pc)
	}
	return pipeline.New(ctx, pc)
}
