package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=database.go Source

// Source is the query interface the filtering engine consumes from a catalogue.
// Implementations must return the same ordering on every call within one run.
type Source interface {
	// SoundBanks returns every sound bank entry in a stable order
	SoundBanks() []SoundBankEntry

	// MediaFiles returns every media entry in a stable order
	MediaFiles() []MediaEntry

	// Events returns every event ordered by id
	Events() []*Event

	// SoundBank returns the sound bank stored under key, or nil
	SoundBank(key LocalizableKey) *SoundBank

	// MediaByID returns every media entry sharing the given media id
	MediaByID(id uint32) []*Media

	// MediaInSoundBank returns the media entries owned by the given sound bank
	MediaInSoundBank(key LocalizableKey) []*Media

	// LanguageName returns the display name of a language id
	LanguageName(id uint32) string
}

// SoundBankEntry is a keyed sound bank
type SoundBankEntry struct {
	Key       LocalizableKey
	SoundBank *SoundBank
}

// MediaEntry is a keyed media file
type MediaEntry struct {
	Key   MediaKey
	Media *Media
}

var (
	// ErrEmptyCatalog is returned when the metadata document is empty
	ErrEmptyCatalog = errors.New("catalog data cannot be empty")

	errLooseWithoutPath     = errors.New("loose media has no path")
	errStreamingWithoutPath = errors.New("streaming media has no path")
	errMemoryWithPath       = errors.New("in-memory media has a path")
	errDanglingMedia        = errors.New("owning sound bank not found")
)

// Database is an in-memory catalogue
type Database struct {
	languages  map[uint32]string
	soundBanks []SoundBankEntry
	bankIndex  map[LocalizableKey]*SoundBank
	media      []MediaEntry
	mediaIndex map[uint32][]*Media
	bankMedia  map[LocalizableKey][]*Media
	events     []*Event
}

var _ Source = (*Database)(nil)

type metadataDocument struct {
	Languages  []languageMetadata  `json:"languages"`
	SoundBanks []soundBankMetadata `json:"soundBanks"`
	Media      []mediaMetadata     `json:"media"`
	Events     []eventMetadata     `json:"events"`
}

type languageMetadata struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

type soundBankMetadata struct {
	ID         uint32 `json:"id"`
	GUID       string `json:"guid"`
	ShortName  string `json:"shortName"`
	Path       string `json:"path"`
	ObjectPath string `json:"objectPath"`
	LanguageID uint32 `json:"languageId"`
	Type       string `json:"type"`
}

type mediaMetadata struct {
	ID           uint32 `json:"id"`
	ShortName    string `json:"shortName"`
	Path         string `json:"path,omitempty"`
	CachePath    string `json:"cachePath,omitempty"`
	LanguageID   uint32 `json:"languageId"`
	SoundBankID  uint32 `json:"soundBankId"`
	Location     string `json:"location"`
	Streaming    bool   `json:"streaming"`
	PrefetchSize uint32 `json:"prefetchSize,omitempty"`
}

type eventMetadata struct {
	ID         uint32            `json:"id"`
	GUID       string            `json:"guid"`
	Name       string            `json:"name"`
	SoundBanks []soundBankRefMeta `json:"soundBanks"`
	Media      []uint32          `json:"media"`
}

type soundBankRefMeta struct {
	ID         uint32 `json:"id"`
	LanguageID uint32 `json:"languageId"`
}

// Load parses a JSON metadata document into a Database.
// Individual records that fail validation are logged and skipped.
func Load(data []byte) (*Database, error) {
	if len(data) == 0 {
		return nil, ErrEmptyCatalog
	}

	var doc metadataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog metadata: %w", err)
	}

	db := newDatabase()

	for _, lang := range doc.Languages {
		db.languages[lang.ID] = lang.Name
	}

	for i := range doc.SoundBanks {
		db.addSoundBank(&doc.SoundBanks[i])
	}

	for i := range doc.Media {
		if err := db.addMedia(&doc.Media[i]); err != nil {
			slog.Error("Rejected media record",
				"id", doc.Media[i].ID,
				"name", doc.Media[i].ShortName,
				"error", err)
		}
	}

	for i := range doc.Events {
		db.addEvent(&doc.Events[i])
	}
	slices.SortStableFunc(db.events, func(a, b *Event) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	slog.Debug("Catalog loaded",
		"soundBanks", len(db.soundBanks),
		"media", len(db.media),
		"events", len(db.events))

	return db, nil
}

func newDatabase() *Database {
	return &Database{
		languages:  map[uint32]string{NoLanguage: "SFX"},
		bankIndex:  make(map[LocalizableKey]*SoundBank),
		mediaIndex: make(map[uint32][]*Media),
		bankMedia:  make(map[LocalizableKey][]*Media),
	}
}

func (db *Database) addSoundBank(meta *soundBankMetadata) {
	bank := &SoundBank{
		ID:         meta.ID,
		GUID:       parseGUID(meta.GUID),
		ShortName:  meta.ShortName,
		Path:       meta.Path,
		ObjectPath: meta.ObjectPath,
		LanguageID: meta.LanguageID,
		Type:       ParseSoundBankType(meta.Type),
	}

	key := bank.Key()
	if _, exists := db.bankIndex[key]; exists {
		slog.Warn("Duplicate sound bank in catalog, keeping first",
			"id", bank.ID,
			"name", bank.ShortName,
			"languageId", bank.LanguageID)
		return
	}

	db.bankIndex[key] = bank
	db.soundBanks = append(db.soundBanks, SoundBankEntry{Key: key, SoundBank: bank})
}

func (db *Database) addMedia(meta *mediaMetadata) error {
	media := &Media{
		ID:           meta.ID,
		ShortName:    meta.ShortName,
		Path:         meta.Path,
		CachePath:    meta.CachePath,
		LanguageID:   meta.LanguageID,
		SoundBankID:  meta.SoundBankID,
		Location:     ParseMediaLocation(meta.Location),
		Streaming:    meta.Streaming,
		PrefetchSize: meta.PrefetchSize,
	}

	if err := validateMedia(media); err != nil {
		return err
	}

	owner := db.owningBank(media)
	if owner == nil {
		return fmt.Errorf("%w: soundBankId %d", errDanglingMedia, media.SoundBankID)
	}
	media.UserBank = owner.IsUserBank()

	db.media = append(db.media, MediaEntry{Key: media.Key(), Media: media})
	db.mediaIndex[media.ID] = append(db.mediaIndex[media.ID], media)
	db.bankMedia[owner.Key()] = append(db.bankMedia[owner.Key()], media)
	return nil
}

func (db *Database) addEvent(meta *eventMetadata) {
	event := &Event{
		ID:       meta.ID,
		GUID:     parseGUID(meta.GUID),
		Name:     meta.Name,
		MediaIDs: slices.Clone(meta.Media),
	}
	for _, ref := range meta.SoundBanks {
		event.SoundBanks = append(event.SoundBanks, LocalizableKey{ID: ref.ID, LanguageID: ref.LanguageID})
	}
	db.events = append(db.events, event)
}

// owningBank resolves the bank of a media entry, preferring the bank in the
// media's own language and falling back to the unlocalized bank
func (db *Database) owningBank(m *Media) *SoundBank {
	if bank, ok := db.bankIndex[LocalizableKey{ID: m.SoundBankID, LanguageID: m.LanguageID}]; ok {
		return bank
	}
	if bank, ok := db.bankIndex[LocalizableKey{ID: m.SoundBankID, LanguageID: NoLanguage}]; ok {
		return bank
	}
	return nil
}

// validateMedia rejects media whose storage declaration contradicts its path
func validateMedia(m *Media) error {
	switch {
	case m.Path == "" && m.Location == MediaLocationLoose:
		return errLooseWithoutPath
	case m.Path == "" && m.Location == MediaLocationMemory && m.Streaming:
		return errStreamingWithoutPath
	case m.Path != "" && m.Location == MediaLocationMemory && !m.Streaming:
		return errMemoryWithPath
	}
	return nil
}

func parseGUID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		slog.Warn("Invalid GUID in catalog", "guid", s, "error", err)
		return uuid.Nil
	}
	return id
}

// SoundBanks returns every sound bank entry in document order
func (db *Database) SoundBanks() []SoundBankEntry {
	return db.soundBanks
}

// MediaFiles returns every accepted media entry in document order
func (db *Database) MediaFiles() []MediaEntry {
	return db.media
}

// Events returns every event ordered by id
func (db *Database) Events() []*Event {
	return db.events
}

// SoundBank returns the sound bank stored under key, or nil
func (db *Database) SoundBank(key LocalizableKey) *SoundBank {
	return db.bankIndex[key]
}

// MediaByID returns every media entry sharing the given media id
func (db *Database) MediaByID(id uint32) []*Media {
	return db.mediaIndex[id]
}

// MediaInSoundBank returns the media entries owned by the given sound bank
func (db *Database) MediaInSoundBank(key LocalizableKey) []*Media {
	return db.bankMedia[key]
}

// LanguageName returns the display name of a language id
func (db *Database) LanguageName(id uint32) string {
	if name, ok := db.languages[id]; ok {
		return name
	}
	return fmt.Sprintf("Language_%d", id)
}
