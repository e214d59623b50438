package filtering

import (
	"sync"

	"github.com/stacklok/asset-librarian/internal/catalog"
)

// Run carries the per-run state of one library evaluation
type Run struct {
	// Snapshot is the catalog snapshot being filtered
	Snapshot *catalog.Snapshot

	// Library is the name of the library being evaluated
	Library string

	scratch sync.Map
}

// NewRun creates a run over the given snapshot for one library
func NewRun(snapshot *catalog.Snapshot, library string) *Run {
	return &Run{
		Snapshot: snapshot,
		Library:  library,
	}
}

// Source returns the catalog behind the snapshot, or nil
func (r *Run) Source() catalog.Source {
	if r == nil || r.Snapshot == nil {
		return nil
	}
	return r.Snapshot.Source
}

// Store saves the scratch state of a filter for the rest of the run
func (r *Run) Store(f Filter, state any) {
	r.scratch.Store(f, state)
}

// Clear removes the scratch state of a filter
func (r *Run) Clear(f Filter) {
	r.scratch.Delete(f)
}

// scratchFor returns the scratch state a filter stored, if it has the expected type
func scratchFor[T any](r *Run, f Filter) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	v, ok := r.scratch.Load(f)
	if !ok {
		return zero, false
	}
	state, ok := v.(T)
	return state, ok
}
