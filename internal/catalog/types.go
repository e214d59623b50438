package catalog

import (
	"log/slog"

	"github.com/google/uuid"
)

// NoLanguage is the language id of assets that are not localized (SFX)
const NoLanguage uint32 = 0

// InitBankName is the short name that identifies the initialization bank
const InitBankName = "Init"

// AssetType identifies the kind of record held by an AssetRecord
type AssetType int

const (
	// AssetTypeUnknown is the zero value of an empty record
	AssetTypeUnknown AssetType = iota
	// AssetTypeSoundBank is a sound bank record
	AssetTypeSoundBank
	// AssetTypeMedia is a media file record
	AssetTypeMedia
)

// String returns the display name of the asset type
func (t AssetType) String() string {
	switch t {
	case AssetTypeSoundBank:
		return "SoundBank"
	case AssetTypeMedia:
		return "Media"
	default:
		return "Unknown"
	}
}

// SoundBankType is the kind of sound bank as declared in the metadata
type SoundBankType string

const (
	// SoundBankTypeUser is a bank defined by the sound designer
	SoundBankTypeUser SoundBankType = "User"
	// SoundBankTypeEvent is a bank generated automatically for an event
	SoundBankTypeEvent SoundBankType = "Event"
	// SoundBankTypeBus is a bank generated automatically for a bus
	SoundBankTypeBus SoundBankType = "Bus"
	// SoundBankTypeUnknown is used when the metadata value is not recognized
	SoundBankTypeUnknown SoundBankType = "Unknown"
)

// ParseSoundBankType converts a metadata string into a SoundBankType.
// Unrecognized values are logged and mapped to SoundBankTypeUnknown.
func ParseSoundBankType(s string) SoundBankType {
	switch SoundBankType(s) {
	case SoundBankTypeUser, SoundBankTypeEvent, SoundBankTypeBus:
		return SoundBankType(s)
	default:
		slog.Warn("Unknown sound bank type", "type", s)
		return SoundBankTypeUnknown
	}
}

// MediaLocation is where a media file is stored once packaged
type MediaLocation string

const (
	// MediaLocationMemory means the media is embedded in its sound bank
	MediaLocationMemory MediaLocation = "Memory"
	// MediaLocationLoose means the media is a standalone file
	MediaLocationLoose MediaLocation = "Loose"
	// MediaLocationOtherBank means the media is embedded in a different bank
	MediaLocationOtherBank MediaLocation = "OtherBank"
	// MediaLocationUnknown is used when the metadata value is not recognized
	MediaLocationUnknown MediaLocation = "Unknown"
)

// ParseMediaLocation converts a metadata string into a MediaLocation.
// Unrecognized values are logged and mapped to MediaLocationUnknown.
func ParseMediaLocation(s string) MediaLocation {
	switch MediaLocation(s) {
	case MediaLocationMemory, MediaLocationLoose, MediaLocationOtherBank:
		return MediaLocation(s)
	default:
		slog.Warn("Unknown media location", "location", s)
		return MediaLocationUnknown
	}
}

// LocalizableKey identifies a sound bank in one language
type LocalizableKey struct {
	ID         uint32
	LanguageID uint32
}

// MediaKey identifies one media entry: the same media id can be listed once per
// language and once per owning bank
type MediaKey struct {
	MediaID     uint32
	LanguageID  uint32
	SoundBankID uint32
}

// SoundBank is a sound bank record
type SoundBank struct {
	ID         uint32
	GUID       uuid.UUID
	ShortName  string
	Path       string
	ObjectPath string
	LanguageID uint32
	Type       SoundBankType
}

// IsInitBank reports whether the bank is the initialization bank
func (b *SoundBank) IsInitBank() bool {
	return b.ShortName == InitBankName
}

// IsUserBank reports whether the bank was defined by the user
func (b *SoundBank) IsUserBank() bool {
	return b.Type == SoundBankTypeUser
}

// Key returns the localizable key of the bank
func (b *SoundBank) Key() LocalizableKey {
	return LocalizableKey{ID: b.ID, LanguageID: b.LanguageID}
}

// Media is a media file record
type Media struct {
	ID           uint32
	ShortName    string
	Path         string
	CachePath    string
	LanguageID   uint32
	SoundBankID  uint32
	Location     MediaLocation
	Streaming    bool
	PrefetchSize uint32

	// UserBank is inherited from the owning sound bank when the catalogue is loaded
	UserBank bool
}

// Key returns the media key of the record
func (m *Media) Key() MediaKey {
	return MediaKey{MediaID: m.ID, LanguageID: m.LanguageID, SoundBankID: m.SoundBankID}
}

// Event is a top-level catalogue entity that references sound banks and media
type Event struct {
	ID         uint32
	GUID       uuid.UUID
	Name       string
	SoundBanks []LocalizableKey
	MediaIDs   []uint32
}

// AssetRecord is one catalogue item: exactly one of SoundBank or Media is set
type AssetRecord struct {
	SoundBank *SoundBank
	Media     *Media
}

// SoundBankAsset wraps a sound bank into an AssetRecord
func SoundBankAsset(b *SoundBank) AssetRecord {
	return AssetRecord{SoundBank: b}
}

// MediaAsset wraps a media file into an AssetRecord
func MediaAsset(m *Media) AssetRecord {
	return AssetRecord{Media: m}
}

// Type returns the kind of record
func (a *AssetRecord) Type() AssetType {
	switch {
	case a.SoundBank != nil:
		return AssetTypeSoundBank
	case a.Media != nil:
		return AssetTypeMedia
	default:
		return AssetTypeUnknown
	}
}

// ID returns the short id of the record
func (a *AssetRecord) ID() uint32 {
	switch {
	case a.SoundBank != nil:
		return a.SoundBank.ID
	case a.Media != nil:
		return a.Media.ID
	default:
		return 0
	}
}

// GUID returns the GUID of the record. Media files carry no GUID.
func (a *AssetRecord) GUID() uuid.UUID {
	if a.SoundBank != nil {
		return a.SoundBank.GUID
	}
	return uuid.Nil
}

// Name returns the short name of the record
func (a *AssetRecord) Name() string {
	switch {
	case a.SoundBank != nil:
		return a.SoundBank.ShortName
	case a.Media != nil:
		return a.Media.ShortName
	default:
		return ""
	}
}

// Path returns the on-disk path of the record
func (a *AssetRecord) Path() string {
	switch {
	case a.SoundBank != nil:
		return a.SoundBank.Path
	case a.Media != nil:
		return a.Media.Path
	default:
		return ""
	}
}

// ObjectPath returns the path of the record in the authoring tool. Only sound
// banks have one.
func (a *AssetRecord) ObjectPath() string {
	if a.SoundBank != nil {
		return a.SoundBank.ObjectPath
	}
	return ""
}

// LanguageID returns the language of the record
func (a *AssetRecord) LanguageID() uint32 {
	switch {
	case a.SoundBank != nil:
		return a.SoundBank.LanguageID
	case a.Media != nil:
		return a.Media.LanguageID
	default:
		return NoLanguage
	}
}

// SoundBankID returns the owning sound bank of a media record, 0 otherwise
func (a *AssetRecord) SoundBankID() uint32 {
	if a.Media != nil {
		return a.Media.SoundBankID
	}
	return 0
}

// IsInitBank reports whether the record is the initialization bank
func (a *AssetRecord) IsInitBank() bool {
	return a.SoundBank != nil && a.SoundBank.IsInitBank()
}

// IsUserBank reports whether the record is, or belongs to, a user-defined bank
func (a *AssetRecord) IsUserBank() bool {
	switch {
	case a.SoundBank != nil:
		return a.SoundBank.IsUserBank()
	case a.Media != nil:
		return a.Media.UserBank
	default:
		return false
	}
}
