package filtering

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/asset-librarian/internal/catalog"
)

// TextTarget selects which text of an asset a TextFilter matches
type TextTarget int

const (
	// TextTargetName matches the short name
	TextTargetName TextTarget = iota
	// TextTargetSystemPath matches the on-disk path
	TextTargetSystemPath
	// TextTargetPathInWwise matches the authoring tool path. Only sound banks have one.
	TextTargetPathInWwise
)

// String returns the configuration name of the target
func (t TextTarget) String() string {
	switch t {
	case TextTargetSystemPath:
		return "systemPath"
	case TextTargetPathInWwise:
		return "pathInWwise"
	default:
		return "name"
	}
}

// TextFilter matches an asset's name or path against a pattern
type TextFilter struct {
	Pattern       string
	Target        TextTarget
	CaseSensitive bool
	UseRegex      bool

	// Exclusion inverts the result: matching assets are rejected
	Exclusion bool

	// FilterSoundBanks and FilterMedia select the asset types the pattern applies to.
	// Assets of other types pass only when Exclusion is set.
	FilterSoundBanks bool
	FilterMedia      bool
}

var _ Filter = (*TextFilter)(nil)

// NewTextFilter creates a TextFilter over names that considers every asset type
func NewTextFilter(pattern string) *TextFilter {
	return &TextFilter{
		Pattern:          pattern,
		Target:           TextTargetName,
		FilterSoundBanks: true,
		FilterMedia:      true,
	}
}

// Name returns a short description of the filter
func (f *TextFilter) Name() string {
	kind := "text"
	if f.Exclusion {
		kind = "text-exclude"
	}
	return fmt.Sprintf("%s(%s %q)", kind, f.Target, f.Pattern)
}

// PreFilter compiles the pattern into the run
func (f *TextFilter) PreFilter(run *Run) error {
	p, err := CompilePattern(f.Pattern, f.UseRegex, f.CaseSensitive)
	if err != nil {
		return fmt.Errorf("text filter: %w", err)
	}
	if p.Terms() == 0 {
		slog.Warn("Text filter pattern is empty and will never match",
			"library", run.Library,
			"filter", f.Name())
	}
	run.Store(f, p)
	return nil
}

// IsAssetAvailable reports whether the asset passes the filter
func (f *TextFilter) IsAssetAvailable(run *Run, asset *catalog.AssetRecord) bool {
	switch asset.Type() {
	case catalog.AssetTypeSoundBank:
		if !f.FilterSoundBanks {
			return f.Exclusion
		}
	case catalog.AssetTypeMedia:
		if !f.FilterMedia {
			return f.Exclusion
		}
	default:
		return false
	}

	p, _ := scratchFor[*Pattern](run, f)
	matched := p.Match(f.inputText(asset))
	return matched != f.Exclusion
}

// PostFilter drops the compiled pattern
func (f *TextFilter) PostFilter(run *Run) {
	run.Clear(f)
}

func (f *TextFilter) inputText(asset *catalog.AssetRecord) string {
	switch f.Target {
	case TextTargetSystemPath:
		return asset.Path()
	case TextTargetPathInWwise:
		return asset.ObjectPath()
	default:
		return asset.Name()
	}
}
