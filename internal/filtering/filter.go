package filtering

import (
	"github.com/stacklok/asset-librarian/internal/catalog"
)

// Filter decides whether an asset belongs to a library
type Filter interface {
	// Name returns a short description used in logs
	Name() string

	// PreFilter prepares the filter for a run. It is called once per run
	// before any IsAssetAvailable call.
	PreFilter(run *Run) error

	// IsAssetAvailable reports whether the asset passes the filter.
	// It may be called concurrently and must not modify the filter.
	IsAssetAvailable(run *Run, asset *catalog.AssetRecord) bool

	// PostFilter releases what PreFilter stored in the run. It is called even
	// when no asset matched.
	PostFilter(run *Run)
}
