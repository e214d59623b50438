package helpers

import (
	"encoding/json"
	"os"

	"github.com/onsi/gomega"
)

// Catalog is the catalog metadata document served to the librarian
type Catalog struct {
	SoundBanks []SoundBank `json:"soundBanks"`
	Media      []Media     `json:"media"`
	Events     []Event     `json:"events"`
}

// SoundBank is one catalog sound bank
type SoundBank struct {
	ID         uint32 `json:"id"`
	GUID       string `json:"guid,omitempty"`
	ShortName  string `json:"shortName"`
	Path       string `json:"path"`
	ObjectPath string `json:"objectPath,omitempty"`
	Type       string `json:"type"`
}

// Media is one catalog media file
type Media struct {
	ID          uint32 `json:"id"`
	ShortName   string `json:"shortName"`
	Path        string `json:"path"`
	SoundBankID uint32 `json:"soundBankId,omitempty"`
	Location    string `json:"location"`
	Streaming   bool   `json:"streaming,omitempty"`
}

// Event is one catalog event
type Event struct {
	ID         uint32      `json:"id"`
	Name       string      `json:"name"`
	SoundBanks []EventBank `json:"soundBanks,omitempty"`
	Media      []uint32    `json:"media,omitempty"`
}

// EventBank references a sound bank holding an event
type EventBank struct {
	ID uint32 `json:"id"`
}

// CreateTestCatalog returns four banks, four media files and one event
func CreateTestCatalog() *Catalog {
	return &Catalog{
		SoundBanks: []SoundBank{
			{ID: 1, ShortName: "Init", Path: "Init.bnk", Type: "User"},
			{ID: 2, ShortName: "Weapons", Path: "Weapons.bnk", ObjectPath: "\\SoundBanks\\Weapons", Type: "User"},
			{ID: 3, ShortName: "Music", Path: "Music.bnk", ObjectPath: "\\SoundBanks\\Music", Type: "User"},
			{ID: 4, ShortName: "Menus", Path: "Menus.bnk", ObjectPath: "\\SoundBanks\\UI\\Menus", Type: "User"},
		},
		Media: []Media{
			{ID: 10, ShortName: "Gunshot.wav", Path: "Media/10.wem", SoundBankID: 2, Location: "Memory"},
			{ID: 11, ShortName: "Theme.wav", Path: "Media/11.wem", SoundBankID: 3, Location: "Loose", Streaming: true},
			{ID: 12, ShortName: "Click.wav", Path: "Media/12.wem", SoundBankID: 4, Location: "Memory"},
			{ID: 13, ShortName: "Ambience.wav", Path: "Media/13.wem", Location: "Loose"},
		},
		Events: []Event{
			{ID: 20, Name: "Play_Gunshot", SoundBanks: []EventBank{{ID: 2}}, Media: []uint32{10}},
		},
	}
}

// AddMedia appends a loose media file to the catalog
func (c *Catalog) AddMedia(id uint32, shortName string, bankID uint32) *Catalog {
	c.Media = append(c.Media, Media{
		ID:          id,
		ShortName:   shortName,
		Path:        "Media/" + shortName,
		SoundBankID: bankID,
		Location:    "Loose",
	})
	return c
}

// JSON encodes the catalog
func (c *Catalog) JSON() []byte {
	data, err := json.MarshalIndent(c, "", "  ")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return data
}

// WriteCatalogFile writes the catalog to path
func WriteCatalogFile(path string, c *Catalog) {
	err := os.WriteFile(path, c.JSON(), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
}

// DefaultLibrariesYAML assigns the test catalog to three libraries and a base library
const DefaultLibrariesYAML = `libraries:
  - name: Weapons
    filters:
      - text:
          pattern: "Weapons Gunshot*"
  - name: Music
    filters:
      - text:
          pattern: "Music Theme*"
  - name: UI
    fallthrough: true
    filters:
      - text:
          pattern: "Menus Click*"
  - name: Base
`
