package filtering

import (
	"github.com/stacklok/asset-librarian/internal/catalog"
)

// SoundBankTypeFilter selects either user-defined or auto-defined sound banks,
// together with the media they own. The init bank never matches.
type SoundBankTypeFilter struct {
	UserBanks bool
}

var _ Filter = (*SoundBankTypeFilter)(nil)

// NewUserDefinedSoundBankFilter selects banks defined by the sound designer
func NewUserDefinedSoundBankFilter() *SoundBankTypeFilter {
	return &SoundBankTypeFilter{UserBanks: true}
}

// NewAutoDefinedSoundBankFilter selects banks generated for events and busses
func NewAutoDefinedSoundBankFilter() *SoundBankTypeFilter {
	return &SoundBankTypeFilter{UserBanks: false}
}

// Name returns a short description of the filter
func (f *SoundBankTypeFilter) Name() string {
	if f.UserBanks {
		return "soundBankType(user)"
	}
	return "soundBankType(auto)"
}

// PreFilter is a no-op
func (*SoundBankTypeFilter) PreFilter(*Run) error {
	return nil
}

// IsAssetAvailable reports whether the asset's bank kind matches the filter
func (f *SoundBankTypeFilter) IsAssetAvailable(_ *Run, asset *catalog.AssetRecord) bool {
	switch asset.Type() {
	case catalog.AssetTypeSoundBank:
		return !asset.IsInitBank() && asset.IsUserBank() == f.UserBanks
	case catalog.AssetTypeMedia:
		return asset.IsUserBank() == f.UserBanks
	default:
		return false
	}
}

// PostFilter is a no-op
func (*SoundBankTypeFilter) PostFilter(*Run) {}
