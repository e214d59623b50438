package catalog

import (
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
)

// Snapshot is the working set of one filtering run
type Snapshot struct {
	// Source is the catalogue the snapshot was built from, nil for an empty snapshot
	Source Source

	// Sources is every candidate asset of the run. It is never modified.
	Sources []AssetRecord

	// Remaining holds the positions in Sources that no library has claimed yet
	Remaining *IndexSet
}

// NewSnapshot builds the run's candidate list from a catalogue source.
// Sound banks come first, followed by the media that are packaged as files:
// loose media and streamed in-memory media. Media ids are deduplicated with
// the first occurrence winning.
func NewSnapshot(src Source) *Snapshot {
	if src == nil {
		slog.Error("Catalog source unavailable, run will produce no assets")
		return &Snapshot{Remaining: NewIndexSet(0)}
	}

	banks := src.SoundBanks()
	media := src.MediaFiles()
	sources := make([]AssetRecord, 0, len(banks)+len(media))

	for _, entry := range banks {
		if entry.SoundBank == nil {
			continue
		}
		sources = append(sources, SoundBankAsset(entry.SoundBank))
	}

	seen := mapset.NewThreadUnsafeSet[uint32]()
	for _, entry := range media {
		m := entry.Media
		if m == nil || !isPackagedMedia(m) {
			continue
		}
		if !seen.Add(m.ID) {
			continue
		}
		sources = append(sources, MediaAsset(m))
	}

	slog.Debug("Catalog snapshot created", "assets", len(sources))

	return &Snapshot{
		Source:    src,
		Sources:   sources,
		Remaining: NewIndexSet(len(sources)),
	}
}

func isPackagedMedia(m *Media) bool {
	switch m.Location {
	case MediaLocationUnknown, MediaLocationOtherBank:
		return false
	case MediaLocationMemory:
		return m.Streaming
	default:
		return true
	}
}

// Asset returns the record at position i of Sources
func (s *Snapshot) Asset(i int) *AssetRecord {
	return &s.Sources[i]
}

// RemainingAssets returns the records still in the remaining pool, in order
func (s *Snapshot) RemainingAssets() []*AssetRecord {
	positions := s.Remaining.Positions()
	out := make([]*AssetRecord, 0, len(positions))
	for _, i := range positions {
		out = append(out, &s.Sources[i])
	}
	return out
}

const tombstone = -1

// IndexSet is an ordered set of positions into Sources. Removed slots are
// tombstoned and dropped on the next Compact.
type IndexSet struct {
	slots   []int
	removed int
}

// NewIndexSet returns the set {0..n)
func NewIndexSet(n int) *IndexSet {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = i
	}
	return &IndexSet{slots: slots}
}

// Len returns the number of live positions
func (s *IndexSet) Len() int {
	return len(s.slots) - s.removed
}

// Compact drops tombstoned slots while keeping the relative order of live ones
func (s *IndexSet) Compact() {
	if s.removed == 0 {
		return
	}
	live := s.slots[:0]
	for _, v := range s.slots {
		if v != tombstone {
			live = append(live, v)
		}
	}
	s.slots = live
	s.removed = 0
}

// Positions returns a copy of the live positions in order
func (s *IndexSet) Positions() []int {
	out := make([]int, 0, s.Len())
	for _, v := range s.slots {
		if v != tombstone {
			out = append(out, v)
		}
	}
	return out
}

// Slot returns the position stored in slot k of a compacted set
func (s *IndexSet) Slot(k int) int {
	return s.slots[k]
}

// RemoveAt tombstones the given slots. Slots must refer to a compacted set and
// are processed in descending order.
func (s *IndexSet) RemoveAt(slots []int) {
	for k := len(slots) - 1; k >= 0; k-- {
		slot := slots[k]
		if slot < 0 || slot >= len(s.slots) || s.slots[slot] == tombstone {
			continue
		}
		s.slots[slot] = tombstone
		s.removed++
	}
}

// Contains reports whether position i is still live
func (s *IndexSet) Contains(i int) bool {
	for _, v := range s.slots {
		if v == i {
			return true
		}
	}
	return false
}
