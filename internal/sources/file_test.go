package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/config"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "SoundbanksInfo.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fileConfig(path string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{File: &config.FileConfig{Path: path}},
	}
}

func TestFileSourceHandler_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		catalog       *config.CatalogConfig
		errorContains string
	}{
		{
			name:    "valid file source",
			catalog: &config.CatalogConfig{File: &config.FileConfig{Path: "/data/catalog.json"}},
		},
		{
			name:          "nil catalog",
			catalog:       nil,
			errorContains: "expected file, got none",
		},
		{
			name:          "wrong source type",
			catalog:       &config.CatalogConfig{API: &config.APIConfig{Endpoint: "http://example.com"}},
			errorContains: "expected file, got api",
		},
		{
			name:          "empty path",
			catalog:       &config.CatalogConfig{File: &config.FileConfig{}},
			errorContains: "file path cannot be empty",
		},
	}

	handler := NewFileSourceHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := handler.Validate(tt.catalog)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileSourceHandler_FetchCatalog(t *testing.T) {
	t.Parallel()

	cfg := fileConfig(writeCatalog(t, testCatalog))

	result, err := NewFileSourceHandler().FetchCatalog(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, result.Database)

	assert.Equal(t, testCatalogHash, result.Hash)
	assert.Empty(t, result.Revision)
	assert.Equal(t, 2, result.SoundBankCount)
	assert.Equal(t, 1, result.MediaCount)
	assert.Equal(t, 1, result.EventCount)

	hash, err := NewFileSourceHandler().CurrentHash(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, result.Hash, hash)
}

func TestFileSourceHandler_FetchCatalogErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		path          func(t *testing.T) string
		errorContains string
	}{
		{
			name:          "missing file",
			path:          func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			errorContains: "failed to access catalog file",
		},
		{
			name:          "directory",
			path:          func(t *testing.T) string { return t.TempDir() },
			errorContains: "is a directory",
		},
		{
			name:          "not json",
			path:          func(t *testing.T) string { return writeCatalog(t, "soundbanks") },
			errorContains: "failed to load catalog file",
		},
		{
			name:          "schema violation",
			path:          func(t *testing.T) string { return writeCatalog(t, `{"events": [{"id": 1}]}`) },
			errorContains: "does not match schema",
		},
		{
			name:          "empty file",
			path:          func(t *testing.T) string { return writeCatalog(t, "") },
			errorContains: "catalog data cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFileSourceHandler().FetchCatalog(context.Background(), fileConfig(tt.path(t)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileSourceHandler_HashChangesWithContent(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, testCatalog)
	handler := NewFileSourceHandler()

	before, err := handler.CurrentHash(context.Background(), fileConfig(path))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"soundBanks": []}`), 0o600))
	after, err := handler.CurrentHash(context.Background(), fileConfig(path))
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}
