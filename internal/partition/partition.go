// Package partition assigns catalog assets to an ordered list of libraries.
//
// Libraries are evaluated in priority order against one snapshot. An asset
// matched by a library leaves the remaining pool, so lower priority libraries
// never see it, unless the library is marked fallthrough. The last library
// never needs to consume since nothing runs after it.
package partition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/asset-librarian/internal/catalog"
	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/otel"
	"github.com/stacklok/asset-librarian/internal/processor"
	"github.com/stacklok/asset-librarian/internal/telemetry"
)

// Options controls a partition run
type Options struct {
	// StopBefore ends the run before the named library is evaluated
	StopBefore string

	// Record stores each library's matches in its FilteredAssets
	Record bool
}

// LibraryResult is the outcome of one library in a run
type LibraryResult struct {
	Name        string
	Fallthrough bool
	Refs        []library.Ref
}

// Result is the outcome of a partition run
type Result struct {
	Libraries []LibraryResult

	// Remaining holds the assets no consuming library claimed
	Remaining []library.Ref
}

// Library returns the result of the named library, or nil
func (r *Result) Library(name string) *LibraryResult {
	for i := range r.Libraries {
		if r.Libraries[i].Name == name {
			return &r.Libraries[i]
		}
	}
	return nil
}

// Partitioner drives a processor across prioritized libraries
type Partitioner struct {
	processor *processor.Processor
	metrics   *telemetry.PartitionMetrics
	tracer    trace.Tracer
}

// Option configures a Partitioner
type Option func(*Partitioner)

// WithProcessor sets the processor used to evaluate libraries
func WithProcessor(p *processor.Processor) Option {
	return func(pt *Partitioner) {
		pt.processor = p
	}
}

// WithMetrics records run metrics
func WithMetrics(m *telemetry.PartitionMetrics) Option {
	return func(pt *Partitioner) {
		pt.metrics = m
	}
}

// WithTracer records a span per run and per library
func WithTracer(t trace.Tracer) Option {
	return func(pt *Partitioner) {
		pt.tracer = t
	}
}

// New creates a Partitioner
func New(opts ...Option) *Partitioner {
	p := &Partitioner{}
	for _, opt := range opts {
		opt(p)
	}
	if p.processor == nil {
		p.processor = processor.New()
	}
	return p
}

// Apply evaluates the libraries in order against the snapshot
func (p *Partitioner) Apply(
	ctx context.Context,
	snapshot *catalog.Snapshot,
	libs []*library.Info,
	opts Options,
) (*Result, error) {
	ctx, span := otel.StartSpan(ctx, p.tracer, "partition.Apply",
		trace.WithAttributes(
			otel.AttrLibraryCount.Int(len(libs)),
			otel.AttrStopBefore.String(opts.StopBefore),
		))
	defer span.End()

	start := time.Now()
	result := &Result{Libraries: make([]LibraryResult, 0, len(libs))}

	for i, lib := range libs {
		if lib == nil {
			slog.Warn("Skipping nil library", "position", i)
			continue
		}
		if opts.StopBefore != "" && lib.Name == opts.StopBefore {
			break
		}

		consume := !lib.Fallthrough && i < len(libs)-1
		refs, err := p.filterLibrary(ctx, snapshot, lib, processor.Options{
			Consume: consume,
			Record:  opts.Record,
		})
		if err != nil {
			otel.RecordError(span, err)
			p.metrics.RecordRun(ctx, time.Since(start), false)
			return nil, fmt.Errorf("partition stopped at library %d: %w", i, err)
		}

		result.Libraries = append(result.Libraries, LibraryResult{
			Name:        lib.Name,
			Fallthrough: lib.Fallthrough,
			Refs:        refs,
		})
		p.metrics.RecordLibraryAssets(ctx, lib.Name, len(refs))
	}

	result.Remaining = remainingRefs(snapshot)
	p.metrics.RecordRemaining(ctx, len(result.Remaining))
	p.metrics.RecordRun(ctx, time.Since(start), true)

	span.SetAttributes(otel.AttrRemainingCount.Int(len(result.Remaining)))

	slog.Info("Partition completed",
		"libraries", len(result.Libraries),
		"remaining", len(result.Remaining),
		"duration", time.Since(start))

	return result, nil
}

// Preview returns what the target library would contain once every library
// before it has claimed its assets. Nothing is recorded.
func (p *Partitioner) Preview(
	ctx context.Context,
	snapshot *catalog.Snapshot,
	libs []*library.Info,
	target string,
) ([]library.Ref, error) {
	lib := library.Find(libs, target)
	if lib == nil {
		return nil, fmt.Errorf("library %q not found", target)
	}

	if _, err := p.Apply(ctx, snapshot, libs, Options{StopBefore: target}); err != nil {
		return nil, err
	}

	return p.filterLibrary(ctx, snapshot, lib, processor.Options{})
}

func (p *Partitioner) filterLibrary(
	ctx context.Context,
	snapshot *catalog.Snapshot,
	lib *library.Info,
	opts processor.Options,
) ([]library.Ref, error) {
	ctx, span := otel.StartLibrarySpan(ctx, p.tracer, "partition.FilterLibrary", lib.Name,
		otel.AttrLibraryConsume.Bool(opts.Consume))
	defer span.End()

	refs, err := p.processor.FilterLibraryAssets(ctx, snapshot, lib, opts)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	otel.SetResultCount(span, len(refs))
	return refs, nil
}

func remainingRefs(snapshot *catalog.Snapshot) []library.Ref {
	if snapshot == nil || snapshot.Remaining == nil {
		return nil
	}
	assets := snapshot.RemainingAssets()
	refs := make([]library.Ref, 0, len(assets))
	for _, asset := range assets {
		refs = append(refs, library.NewRef(asset))
	}
	return refs
}
