package filtering

import (
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/stacklok/asset-librarian/internal/catalog"
)

// EventFilter selects the sound banks and media referenced by events whose
// name matches a pattern.
//
// Sets are keyed by short name, so two localized banks sharing a name are
// treated as the same asset.
type EventFilter struct {
	Pattern       string
	CaseSensitive bool
	UseRegex      bool

	// SingleReferenceOnly drops every asset that a non-matching event also references
	SingleReferenceOnly bool

	FilterSoundBanks bool
	FilterMedia      bool
}

var _ Filter = (*EventFilter)(nil)

// eventSets is the per-run result of scanning the catalog events
type eventSets struct {
	additionalSoundBanks mapset.Set[string]
	additionalMedia      mapset.Set[string]
	outsideSoundBanks    mapset.Set[string]
	outsideMedia         mapset.Set[string]
}

func newEventSets() *eventSets {
	return &eventSets{
		additionalSoundBanks: mapset.NewThreadUnsafeSet[string](),
		additionalMedia:      mapset.NewThreadUnsafeSet[string](),
		outsideSoundBanks:    mapset.NewThreadUnsafeSet[string](),
		outsideMedia:         mapset.NewThreadUnsafeSet[string](),
	}
}

// NewEventFilter creates an EventFilter that considers every asset type
func NewEventFilter(pattern string) *EventFilter {
	return &EventFilter{
		Pattern:          pattern,
		FilterSoundBanks: true,
		FilterMedia:      true,
	}
}

// Name returns a short description of the filter
func (f *EventFilter) Name() string {
	if f.SingleReferenceOnly {
		return fmt.Sprintf("event-single(%q)", f.Pattern)
	}
	return fmt.Sprintf("event(%q)", f.Pattern)
}

// PreFilter scans every event of the catalog and stores the referenced asset names
func (f *EventFilter) PreFilter(run *Run) error {
	p, err := CompilePattern(f.Pattern, f.UseRegex, f.CaseSensitive)
	if err != nil {
		return fmt.Errorf("event filter: %w", err)
	}

	sets := newEventSets()
	src := run.Source()
	if src == nil {
		run.Store(f, sets)
		return nil
	}

	inside := 0
	for _, event := range src.Events() {
		matched := p.Match(event.Name)
		if matched {
			inside++
		} else if !f.SingleReferenceOnly {
			continue
		}

		if f.FilterSoundBanks {
			for _, key := range event.SoundBanks {
				f.addSoundBank(src, sets, matched, key)
			}
		}
		if f.FilterMedia {
			for _, id := range event.MediaIDs {
				for _, media := range src.MediaByID(id) {
					sets.media(matched).Add(media.ShortName)
				}
			}
		}
	}

	if f.SingleReferenceOnly {
		sets.additionalSoundBanks = sets.additionalSoundBanks.Difference(sets.outsideSoundBanks)
		sets.additionalMedia = sets.additionalMedia.Difference(sets.outsideMedia)
		sets.outsideSoundBanks.Clear()
		sets.outsideMedia.Clear()
	}

	slog.Debug("Event filter scanned catalog",
		"library", run.Library,
		"filter", f.Name(),
		"matchingEvents", inside,
		"soundBanks", sets.additionalSoundBanks.Cardinality(),
		"media", sets.additionalMedia.Cardinality())

	run.Store(f, sets)
	return nil
}

// addSoundBank records a bank and, when media are filtered, the media it owns
func (f *EventFilter) addSoundBank(src catalog.Source, sets *eventSets, inside bool, key catalog.LocalizableKey) {
	bank := src.SoundBank(key)
	if bank == nil {
		return
	}
	sets.soundBanks(inside).Add(bank.ShortName)

	if f.FilterMedia {
		for _, media := range src.MediaInSoundBank(key) {
			sets.media(inside).Add(media.ShortName)
		}
	}
}

// IsAssetAvailable reports whether a matching event references the asset
func (f *EventFilter) IsAssetAvailable(run *Run, asset *catalog.AssetRecord) bool {
	sets, ok := scratchFor[*eventSets](run, f)
	if !ok {
		return false
	}

	switch asset.Type() {
	case catalog.AssetTypeSoundBank:
		return sets.additionalSoundBanks.Contains(asset.Name())
	case catalog.AssetTypeMedia:
		return sets.additionalMedia.Contains(asset.Name())
	default:
		return false
	}
}

// PostFilter drops the event scan results
func (f *EventFilter) PostFilter(run *Run) {
	run.Clear(f)
}

// AdditionalMedia returns the media names selected in the run, for inspection
func (f *EventFilter) AdditionalMedia(run *Run) []string {
	sets, ok := scratchFor[*eventSets](run, f)
	if !ok {
		return nil
	}
	return sets.additionalMedia.ToSlice()
}

// AdditionalSoundBanks returns the sound bank names selected in the run, for inspection
func (f *EventFilter) AdditionalSoundBanks(run *Run) []string {
	sets, ok := scratchFor[*eventSets](run, f)
	if !ok {
		return nil
	}
	return sets.additionalSoundBanks.ToSlice()
}

func (s *eventSets) soundBanks(inside bool) mapset.Set[string] {
	if inside {
		return s.additionalSoundBanks
	}
	return s.outsideSoundBanks
}

func (s *eventSets) media(inside bool) mapset.Set[string] {
	if inside {
		return s.additionalMedia
	}
	return s.outsideMedia
}
