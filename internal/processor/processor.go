// Package processor evaluates asset libraries against a catalog snapshot.
//
// FilterLibraryAssets computes which assets still in the snapshot's remaining
// pool satisfy every effective filter of a library. Filter setup and asset
// evaluation run in parallel, the result keeps the order of the remaining pool,
// and matched assets can optionally be claimed by removing them from the pool.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/asset-librarian/internal/catalog"
	"github.com/stacklok/asset-librarian/internal/filtering"
	"github.com/stacklok/asset-librarian/internal/library"
)

// parallelFilterThreshold is the filter count from which the filters of one
// asset are evaluated concurrently
const parallelFilterThreshold = 3

// Options controls what a library evaluation changes
type Options struct {
	// Consume removes matched assets from the snapshot's remaining pool
	Consume bool

	// Record replaces the library's FilteredAssets with the matches
	Record bool
}

// Processor evaluates libraries. Calls are serialized.
type Processor struct {
	mu      sync.Mutex
	workers int
}

// Option configures a Processor
type Option func(*Processor)

// WithWorkers sets the number of goroutines used by each parallel step
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a Processor. Parallel steps default to GOMAXPROCS workers.
func New(opts ...Option) *Processor {
	p := &Processor{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FilterLibraryAssets evaluates a library over the remaining pool of the snapshot
// and returns the matched refs in pool order.
//
// A nil filter always matches. If a filter fails to prepare, no asset matches,
// nothing is recorded or consumed, and the error is returned.
func (p *Processor) FilterLibraryAssets(
	ctx context.Context,
	snapshot *catalog.Snapshot,
	lib *library.Info,
	opts Options,
) ([]library.Ref, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lib == nil {
		return nil, fmt.Errorf("library cannot be nil")
	}
	if snapshot == nil || snapshot.Remaining == nil {
		slog.Error("No catalog snapshot, library is empty", "library", lib.Name)
		if opts.Record {
			lib.FilteredAssets = nil
		}
		return nil, nil
	}

	start := time.Now()
	snapshot.Remaining.Compact()

	filters := lib.EffectiveFilters()
	for i, f := range filters {
		if f == nil {
			slog.Warn("Nil filter in library, treating it as always matching",
				"library", lib.Name,
				"index", i)
		}
	}

	run := filtering.NewRun(snapshot, lib.Name)
	defer p.postFilter(run, filters)

	if err := p.preFilter(ctx, run, filters); err != nil {
		return nil, p.fail(lib, opts, err)
	}

	slots, err := p.evaluate(ctx, run, filters)
	if err != nil {
		return nil, p.fail(lib, opts, err)
	}

	refs := make([]library.Ref, 0, len(slots))
	for _, slot := range slots {
		refs = append(refs, library.NewRef(snapshot.Asset(snapshot.Remaining.Slot(slot))))
	}

	if opts.Record {
		lib.FilteredAssets = refs
	}

	remainingBefore := snapshot.Remaining.Len()
	if opts.Consume {
		snapshot.Remaining.RemoveAt(slots)
	}

	slog.Debug("Library filtered",
		"library", lib.Name,
		"filters", len(filters),
		"candidates", remainingBefore,
		"matched", len(refs),
		"remaining", snapshot.Remaining.Len(),
		"consume", opts.Consume,
		"record", opts.Record,
		"duration", time.Since(start))

	return refs, nil
}

// fail clears a recorded library and wraps the error
func (*Processor) fail(lib *library.Info, opts Options, err error) error {
	if opts.Record {
		lib.FilteredAssets = nil
	}
	slog.Error("Library filtering failed", "library", lib.Name, "error", err)
	return fmt.Errorf("library %s: %w", lib.Name, err)
}

// preFilter prepares every filter concurrently
func (p *Processor) preFilter(ctx context.Context, run *filtering.Run, filters []filtering.Filter) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, f := range filters {
		if f == nil {
			continue
		}
		g.Go(func() error {
			return f.PreFilter(run)
		})
	}
	return g.Wait()
}

// postFilter releases every filter's run state
func (*Processor) postFilter(run *filtering.Run, filters []filtering.Filter) {
	for _, f := range filters {
		if f != nil {
			f.PostFilter(run)
		}
	}
}

// evaluate returns the slots of the compacted remaining pool whose asset passes
// every filter, in ascending order
func (p *Processor) evaluate(ctx context.Context, run *filtering.Run, filters []filtering.Filter) ([]int, error) {
	remaining := run.Snapshot.Remaining
	n := remaining.Len()
	matched := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for start := 0; start < n; start += chunkSize(n, p.workers) {
		end := min(start+chunkSize(n, p.workers), n)
		g.Go(func() error {
			for slot := start; slot < end; slot++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				asset := run.Snapshot.Asset(remaining.Slot(slot))
				matched[slot] = p.isMatch(run, filters, asset)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slots := make([]int, 0, n)
	for slot, ok := range matched {
		if ok {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// isMatch ANDs every filter for one asset. From parallelFilterThreshold filters
// on, the filters are evaluated concurrently.
func (*Processor) isMatch(run *filtering.Run, filters []filtering.Filter, asset *catalog.AssetRecord) bool {
	switch {
	case len(filters) == 0:
		return true
	case len(filters) < parallelFilterThreshold:
		for _, f := range filters {
			if !available(run, f, asset) {
				return false
			}
		}
		return true
	}

	results := make([]bool, len(filters))
	var wg sync.WaitGroup
	for i, f := range filters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = available(run, f, asset)
		}()
	}
	wg.Wait()

	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

func available(run *filtering.Run, f filtering.Filter, asset *catalog.AssetRecord) bool {
	if f == nil {
		return true
	}
	return f.IsAssetAvailable(run, asset)
}

// chunkSize splits n items across workers, a few chunks per worker
func chunkSize(n, workers int) int {
	size := n / (workers * 4)
	if size < 1 {
		return 1
	}
	return size
}
