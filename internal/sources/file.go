package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stacklok/asset-librarian/internal/config"
)

// FileSourceHandler reads the catalog from the local filesystem
type FileSourceHandler struct{}

var _ SourceHandler = (*FileSourceHandler)(nil)

// NewFileSourceHandler creates a new file source handler
func NewFileSourceHandler() *FileSourceHandler {
	return &FileSourceHandler{}
}

// Validate validates the file source configuration
func (*FileSourceHandler) Validate(cat *config.CatalogConfig) error {
	if cat == nil || cat.GetType() != config.SourceTypeFile {
		return fmt.Errorf("invalid source type: expected %s, got %s", config.SourceTypeFile, catalogType(cat))
	}
	if cat.File.Path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	return nil
}

// FetchCatalog reads and loads the catalog file
func (h *FileSourceHandler) FetchCatalog(_ context.Context, cfg *config.Config) (*FetchResult, error) {
	data, err := h.read(cfg)
	if err != nil {
		return nil, err
	}

	result, err := loadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file %s: %w", cfg.Catalog.File.Path, err)
	}
	return result, nil
}

// CurrentHash returns the hash of the catalog file contents
func (h *FileSourceHandler) CurrentHash(_ context.Context, cfg *config.Config) (string, error) {
	data, err := h.read(cfg)
	if err != nil {
		return "", err
	}
	return hashDocument(data), nil
}

func (h *FileSourceHandler) read(cfg *config.Config) ([]byte, error) {
	if err := h.Validate(&cfg.Catalog); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	path := filepath.Clean(cfg.Catalog.File.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return data, nil
}

func catalogType(cat *config.CatalogConfig) string {
	if cat == nil {
		return "none"
	}
	if t := cat.GetType(); t != "" {
		return t
	}
	return "none"
}
