// Package library defines asset libraries: named, prioritized groups of
// filters together with the assets they matched in the last run.
package library

import (
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/stacklok/asset-librarian/internal/filtering"
)

// Info is one asset library
type Info struct {
	Name string

	// Filters are the library's own filters. A nil entry always matches.
	Filters []filtering.Filter

	// SharedFilters are applied after Filters
	SharedFilters []*SharedFilter

	// Fallthrough leaves matched assets available to lower priority libraries
	Fallthrough bool

	// PackageAssets is false for libraries that only claim assets
	PackageAssets bool

	// FilteredAssets is the result of the last recorded run
	FilteredAssets []Ref
}

// SharedFilter is a named group of filters that several libraries can reference.
// Shared filters may reference each other.
type SharedFilter struct {
	Name string
	Info Info
}

// New creates a library that packages its assets
func New(name string, filters ...filtering.Filter) *Info {
	return &Info{
		Name:          name,
		Filters:       filters,
		PackageAssets: true,
	}
}

// EffectiveFilters flattens the library's own filters followed by its shared
// filters, depth first. A shared filter reached twice is applied once, which
// also breaks reference cycles.
func (l *Info) EffectiveFilters() []filtering.Filter {
	if l == nil {
		return nil
	}
	visited := mapset.NewThreadUnsafeSet[*SharedFilter]()
	return l.collectFilters(l.Name, nil, visited)
}

func (l *Info) collectFilters(
	library string,
	out []filtering.Filter,
	visited mapset.Set[*SharedFilter],
) []filtering.Filter {
	out = append(out, l.Filters...)

	for _, shared := range l.SharedFilters {
		if shared == nil {
			slog.Warn("Skipping nil shared filter", "library", library)
			continue
		}
		if !visited.Add(shared) {
			slog.Warn("Shared filter already applied, skipping",
				"library", library,
				"sharedFilter", shared.Name)
			continue
		}
		out = shared.Info.collectFilters(library, out, visited)
	}

	return out
}
