package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/config"
)

const testCatalog = `{
  "soundBanks": [
    {"id": 1, "shortName": "Init", "path": "Init.bnk", "type": "User"},
    {"id": 2, "shortName": "Weapons", "path": "Weapons.bnk", "type": "User"},
    {"id": 3, "shortName": "UI", "path": "UI.bnk", "type": "User"}
  ],
  "media": [
    {"id": 10, "shortName": "Gunshot.wav", "path": "Media/10.wem", "soundBankId": 2, "location": "Loose"},
    {"id": 11, "shortName": "Click.wav", "path": "Media/11.wem", "soundBankId": 3, "location": "Loose"}
  ],
  "events": [
    {"id": 5, "name": "Play_Gunshot", "soundBanks": [{"id": 2}], "media": [10]}
  ]
}`

func ptr[T any](v T) *T {
	return &v
}

// testConfig returns a file-sourced config with a Weapons library followed by
// a catch-all Rest library
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "SoundbanksInfo.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	return &config.Config{
		Name:    "windows",
		Catalog: config.CatalogConfig{File: &config.FileConfig{Path: path}},
		Libraries: []config.LibraryConfig{
			{
				Name: "Weapons",
				Filters: []*config.FilterConfig{
					{Text: &config.TextFilterConfig{Pattern: ptr("Weapons Gunshot*")}},
				},
			},
			{Name: "Rest"},
		},
	}
}
