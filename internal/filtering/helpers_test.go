package filtering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/catalog"
)

// eventCatalogJSON has two user banks and one event bank. E1 matches "E1*"
// and references MediaA and MediaB, E2 references MediaB and MediaC.
const eventCatalogJSON = `{
  "soundBanks": [
    {"id": 1, "shortName": "Init", "path": "Init.bnk", "objectPath": "\\SoundBanks\\Init", "type": "User"},
    {"id": 2, "shortName": "Foo1", "path": "Banks/Foo1.bnk", "objectPath": "\\SoundBanks\\Gameplay\\Foo1", "type": "User"},
    {"id": 3, "shortName": "Bar1", "path": "Banks/Bar1.bnk", "objectPath": "\\SoundBanks\\Menus\\Bar1", "type": "Event"}
  ],
  "media": [
    {"id": 10, "shortName": "MediaA", "path": "Media/10.wem", "soundBankId": 2, "location": "Loose"},
    {"id": 11, "shortName": "MediaB", "path": "Media/11.wem", "soundBankId": 2, "location": "Loose"},
    {"id": 12, "shortName": "MediaC", "path": "Media/12.wem", "soundBankId": 3, "location": "Loose"}
  ],
  "events": [
    {"id": 100, "name": "E1_Play", "soundBanks": [{"id": 2}], "media": [10, 11]},
    {"id": 200, "name": "E2_Play", "soundBanks": [{"id": 3}], "media": [11, 12]}
  ]
}`

func newTestSnapshot(t *testing.T, data string) *catalog.Snapshot {
	t.Helper()
	db, err := catalog.Load([]byte(data))
	require.NoError(t, err)
	return catalog.NewSnapshot(db)
}

// assetByName returns the first snapshot record with the given name
func assetByName(t *testing.T, snap *catalog.Snapshot, name string) *catalog.AssetRecord {
	t.Helper()
	for i := range snap.Sources {
		if snap.Sources[i].Name() == name {
			return &snap.Sources[i]
		}
	}
	t.Fatalf("asset %q not found in snapshot", name)
	return nil
}

// availableNames runs the filter lifecycle and returns the names of the available assets
func availableNames(t *testing.T, f Filter, snap *catalog.Snapshot) []string {
	t.Helper()
	run := NewRun(snap, "test")
	require.NoError(t, f.PreFilter(run))
	defer f.PostFilter(run)

	var names []string
	for i := range snap.Sources {
		if f.IsAssetAvailable(run, &snap.Sources[i]) {
			names = append(names, snap.Sources[i].Name())
		}
	}
	return names
}
