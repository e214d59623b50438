package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/partition"
	"github.com/stacklok/asset-librarian/internal/versions"
)

const testRunName = "windows"

func testRefs(names ...string) []library.Ref {
	refs := make([]library.Ref, 0, len(names))
	for i, name := range names {
		refs = append(refs, library.Ref{
			Type: library.RefTypeSoundBank,
			GUID: uuid.New(),
			ID:   uint32(100 + i),
			Name: name,
		})
	}
	return refs
}

func testOutput() *Output {
	claimOnly := library.New("Unused")
	claimOnly.PackageAssets = false

	libs := []*library.Info{library.New("Weapons"), claimOnly, library.New("UI/Menus")}
	result := &partition.Result{
		Libraries: []partition.LibraryResult{
			{Name: "Weapons", Refs: testRefs("Gun", "Reload")},
			{Name: "Unused", Refs: testRefs("Old")},
			{Name: "UI/Menus", Fallthrough: true, Refs: nil},
		},
		Remaining: testRefs("Ambience"),
	}
	return NewOutput(testRunName, "abc123", libs, result)
}

func TestNewOutput(t *testing.T) {
	t.Parallel()

	out := testOutput()

	assert.Equal(t, versions.OutputFormat, out.FormatVersion)
	assert.Equal(t, testRunName, out.Name)
	assert.Equal(t, "abc123", out.CatalogHash)
	_, err := uuid.Parse(out.RunID)
	assert.NoError(t, err)

	require.Len(t, out.Libraries, 2, "claim-only libraries are not packaged")
	assert.Equal(t, "Weapons", out.Libraries[0].Name)
	assert.Equal(t, "Weapons.bin", out.Libraries[0].BinaryFile)
	assert.Equal(t, "UI_Menus.bin", out.Libraries[1].BinaryFile)
	assert.True(t, out.Libraries[1].Fallthrough)
	assert.NotNil(t, out.Libraries[1].Assets)

	assert.Nil(t, out.Library("Unused"))
	assert.Equal(t, 2, out.AssetCount())
	assert.Len(t, out.Remaining, 1)

	empty := NewOutput(testRunName, "", nil, nil)
	assert.Empty(t, empty.Libraries)
	assert.NotNil(t, empty.Remaining)
}

func TestFileStorageManager_StoreAndGet(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	manager := NewFileStorageManager(tmpDir)
	ctx := context.Background()

	out := testOutput()
	require.NoError(t, manager.Store(ctx, out))

	_, err := os.Stat(filepath.Join(tmpDir, testRunName, OutputFileName))
	require.NoError(t, err)

	retrieved, err := manager.Get(ctx, testRunName)
	require.NoError(t, err)
	assert.Equal(t, out.RunID, retrieved.RunID)
	assert.Equal(t, out.CatalogHash, retrieved.CatalogHash)
	assert.True(t, out.RunAt.Equal(retrieved.RunAt))
	require.Len(t, retrieved.Libraries, 2)
	assert.Equal(t, out.Libraries[0].Assets, retrieved.Libraries[0].Assets)
	assert.Equal(t, out.Remaining, retrieved.Remaining)
}

func TestFileStorageManager_BinaryFiles(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	manager := NewFileStorageManager(tmpDir)
	ctx := context.Background()

	out := testOutput()
	require.NoError(t, manager.Store(ctx, out))

	data, err := os.ReadFile(filepath.Join(tmpDir, testRunName, "Weapons.bin"))
	require.NoError(t, err)
	refs, err := library.DecodeRefs(data)
	require.NoError(t, err)
	assert.Equal(t, out.Libraries[0].Assets, refs)

	data, err = os.ReadFile(filepath.Join(tmpDir, testRunName, "UI_Menus.bin"))
	require.NoError(t, err)
	assert.Empty(t, data)

	// a library that is no longer packaged loses its binary file
	out.Libraries = out.Libraries[:1]
	require.NoError(t, manager.Store(ctx, out))

	_, err = os.Stat(filepath.Join(tmpDir, testRunName, "UI_Menus.bin"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(tmpDir, testRunName, "Weapons.bin"))
	assert.NoError(t, err)
}

func TestFileStorageManager_Delete(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	manager := NewFileStorageManager(tmpDir)
	ctx := context.Background()

	require.NoError(t, manager.Store(ctx, testOutput()))
	require.NoError(t, manager.Delete(ctx, testRunName))

	_, err := os.Stat(filepath.Join(tmpDir, testRunName))
	assert.True(t, os.IsNotExist(err))

	_, err = manager.Get(ctx, testRunName)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is not an error
	assert.NoError(t, manager.Delete(ctx, testRunName))
}

func TestFileStorageManager_GetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		content       string
		errorContains string
	}{
		{
			name:          "corrupt document",
			content:       `{"formatVersion": `,
			errorContains: "failed to unmarshal partition output",
		},
		{
			name:          "missing format version",
			content:       `{"name": "windows"}`,
			errorContains: "output format version is missing",
		},
		{
			name:          "incompatible format version",
			content:       `{"formatVersion": "2.0.0"}`,
			errorContains: "not compatible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			dir := filepath.Join(tmpDir, testRunName)
			require.NoError(t, os.MkdirAll(dir, 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(dir, OutputFileName), []byte(tt.content), 0o600))

			_, err := NewFileStorageManager(tmpDir).Get(context.Background(), testRunName)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileStorageManager_StoreErrors(t *testing.T) {
	t.Parallel()

	manager := NewFileStorageManager(t.TempDir())
	ctx := context.Background()

	assert.Error(t, manager.Store(ctx, nil))
	assert.Error(t, manager.Store(ctx, &Output{}))

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, manager.Store(ctx, testOutput()), "a cancelled context cannot wait for the lock")
}

func TestOutput_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(testOutput())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "formatVersion")
	assert.Contains(t, doc, "catalogHash")
	assert.NotContains(t, doc, "revision")

	libs, ok := doc["libraries"].([]any)
	require.True(t, ok)
	first, ok := libs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Weapons.bin", first["binaryFile"])
}

func TestSafeFileName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Weapons":       "Weapons",
		"UI/Menus":      "UI_Menus",
		"../escape":     ".._escape",
		"Voice (en-US)": "Voice__en-US_",
		"..":            "_..",
		"":              "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeFileName(in), "input %q", in)
	}
}
