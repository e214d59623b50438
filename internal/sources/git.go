package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/git"
)

// DefaultCatalogFile is the metadata file read from a repository when no path is configured
const DefaultCatalogFile = "SoundbanksInfo.json"

// GitSourceHandler reads the catalog from a Git repository
type GitSourceHandler struct {
	gitClient git.Client
}

var _ SourceHandler = (*GitSourceHandler)(nil)

// NewGitSourceHandler creates a new Git source handler. A nil client selects
// the default go-git client.
func NewGitSourceHandler(client git.Client) *GitSourceHandler {
	if client == nil {
		client = git.NewDefaultGitClient()
	}
	return &GitSourceHandler{gitClient: client}
}

// Validate validates the Git source configuration
func (*GitSourceHandler) Validate(cat *config.CatalogConfig) error {
	if cat == nil || cat.GetType() != config.SourceTypeGit {
		return fmt.Errorf("invalid source type: expected %s, got %s", config.SourceTypeGit, catalogType(cat))
	}
	if cat.Git.Repository == "" {
		return fmt.Errorf("git repository URL cannot be empty")
	}

	refs := 0
	for _, ref := range []string{cat.Git.Branch, cat.Git.Tag, cat.Git.Commit} {
		if ref != "" {
			refs++
		}
	}
	if refs > 1 {
		return fmt.Errorf("only one of branch, tag, or commit may be specified")
	}
	return nil
}

// FetchCatalog clones the repository and loads the catalog file
func (h *GitSourceHandler) FetchCatalog(ctx context.Context, cfg *config.Config) (*FetchResult, error) {
	data, commit, err := h.read(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result, err := loadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", cfg.Catalog.Git.Repository, err)
	}
	result.Revision = commit
	return result, nil
}

// CurrentHash clones the repository and hashes the catalog file
func (h *GitSourceHandler) CurrentHash(ctx context.Context, cfg *config.Config) (string, error) {
	data, _, err := h.read(ctx, cfg)
	if err != nil {
		return "", err
	}
	return hashDocument(data), nil
}

func (h *GitSourceHandler) read(ctx context.Context, cfg *config.Config) ([]byte, string, error) {
	if err := h.Validate(&cfg.Catalog); err != nil {
		return nil, "", fmt.Errorf("source validation failed: %w", err)
	}
	gitCfg := cfg.Catalog.Git

	cloneConfig := &git.CloneConfig{
		URL:    gitCfg.Repository,
		Branch: gitCfg.Branch,
		Tag:    gitCfg.Tag,
		Commit: gitCfg.Commit,
	}
	if gitCfg.Auth != nil {
		password, err := gitCfg.Auth.GetPassword()
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve git credentials: %w", err)
		}
		cloneConfig.Auth = &git.AuthConfig{Username: gitCfg.Auth.Username, Password: password}
	}

	start := time.Now()
	repoInfo, err := h.gitClient.Clone(ctx, cloneConfig)
	if err != nil {
		return nil, "", fmt.Errorf("failed to clone repository: %w", err)
	}
	defer func() {
		if cleanupErr := h.gitClient.Cleanup(ctx, repoInfo); cleanupErr != nil {
			slog.Warn("Failed to clean up repository", "error", cleanupErr)
		}
	}()

	path := gitCfg.Path
	if path == "" {
		path = DefaultCatalogFile
	}

	data, err := h.gitClient.GetFileContent(repoInfo, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file %s from repository: %w", path, err)
	}

	slog.Info("Catalog read from repository",
		"repository", gitCfg.Repository,
		"path", path,
		"commit", repoInfo.CommitHash,
		"bytes", len(data),
		"duration", time.Since(start).String())

	return data, repoInfo.CommitHash, nil
}
