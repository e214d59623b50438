package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/asset-librarian/internal/catalog"
	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/otel"
	"github.com/stacklok/asset-librarian/internal/partition"
	"github.com/stacklok/asset-librarian/internal/sources"
	"github.com/stacklok/asset-librarian/internal/storage"
)

const (
	// ServiceTracerName is the name used for the library service tracer
	ServiceTracerName = "github.com/stacklok/asset-librarian/service"

	defaultCacheDuration = 5 * time.Second
)

// libSvc implements the LibraryService interface
type libSvc struct {
	config         *config.Config
	storageManager storage.StorageManager
	handlerFactory sources.SourceHandlerFactory
	partitioner    *partition.Partitioner
	tracer         trace.Tracer

	mu            sync.RWMutex // Protects output, lastFetch
	output        *storage.Output
	lastFetch     time.Time
	cacheDuration time.Duration
}

var _ LibraryService = (*libSvc)(nil)

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*libSvc)

// WithCacheDuration sets how long a loaded output is served before it is re-read
func WithCacheDuration(duration time.Duration) ServiceOption {
	return func(s *libSvc) {
		s.cacheDuration = duration
	}
}

// WithPartitioner sets the partitioner used for previews
func WithPartitioner(p *partition.Partitioner) ServiceOption {
	return func(s *libSvc) {
		s.partitioner = p
	}
}

// WithTracer records a span per service operation
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(s *libSvc) {
		s.tracer = tracer
	}
}

// New creates a library service reading outputs from storageManager and
// fetching catalogs for previews through handlerFactory
func New(
	cfg *config.Config,
	storageManager storage.StorageManager,
	handlerFactory sources.SourceHandlerFactory,
	opts ...ServiceOption,
) (LibraryService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if storageManager == nil {
		return nil, fmt.Errorf("storage manager is required")
	}
	if handlerFactory == nil {
		return nil, fmt.Errorf("source handler factory is required")
	}

	s := &libSvc{
		config:         cfg,
		storageManager: storageManager,
		handlerFactory: handlerFactory,
		cacheDuration:  defaultCacheDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.partitioner == nil {
		s.partitioner = partition.New(partition.WithTracer(s.tracer))
	}

	return s, nil
}

// CheckReadiness reports ErrNotReady until a run has stored its output
func (s *libSvc) CheckReadiness(ctx context.Context) error {
	_, err := s.loadOutput(ctx)
	return err
}

// ListLibraries returns the stored libraries matching the options
func (s *libSvc) ListLibraries(
	ctx context.Context,
	opts ...Option[ListLibrariesOptions],
) (*LibraryList, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.ListLibraries")
	defer span.End()

	options := &ListLibrariesOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			otel.RecordError(span, err)
			return nil, err
		}
	}

	after, err := DecodeCursor(options.Cursor)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		otel.RecordError(span, err)
		return nil, err
	}

	out, err := s.loadOutput(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	summaries := make([]LibrarySummary, 0, len(out.Libraries))
	for _, lib := range out.Libraries {
		if options.Name != nil && !options.Name.Match(lib.Name) {
			continue
		}
		summaries = append(summaries, LibrarySummary{
			Name:        lib.Name,
			Fallthrough: lib.Fallthrough,
			AssetCount:  len(lib.Assets),
			BinaryFile:  lib.BinaryFile,
		})
	}

	// libraries keep their priority order, so the cursor is a position, not a sort key
	if after != "" {
		pos := -1
		for i := range summaries {
			if summaries[i].Name == after {
				pos = i
				break
			}
		}
		if pos < 0 {
			err := fmt.Errorf("%w: cursor library %q is not listed", ErrInvalidArgument, after)
			otel.RecordError(span, err)
			return nil, err
		}
		summaries = summaries[pos+1:]
	}

	list := &LibraryList{
		RunID:          out.RunID,
		RunAt:          out.RunAt,
		CatalogHash:    out.CatalogHash,
		Revision:       out.Revision,
		RemainingCount: len(out.Remaining),
	}
	if options.Limit > 0 && len(summaries) > options.Limit {
		summaries = summaries[:options.Limit]
		list.NextCursor = EncodeCursor(summaries[len(summaries)-1].Name)
	}
	list.Libraries = summaries

	otel.SetResultCount(span, len(summaries))
	return list, nil
}

// GetLibrary returns the stored assets of the named library
func (s *libSvc) GetLibrary(ctx context.Context, name string) (*LibraryDetail, error) {
	ctx, span := otel.StartLibrarySpan(ctx, s.tracer, "service.GetLibrary", name)
	defer span.End()

	out, err := s.loadOutput(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	lib := out.Library(name)
	if lib == nil {
		err := fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
		otel.RecordError(span, err)
		return nil, err
	}

	otel.SetResultCount(span, len(lib.Assets))
	return &LibraryDetail{
		Name:        lib.Name,
		Fallthrough: lib.Fallthrough,
		RunID:       out.RunID,
		RunAt:       out.RunAt,
		CatalogHash: out.CatalogHash,
		Assets:      lib.Assets,
	}, nil
}

// PreviewLibrary fetches the current catalog and evaluates every library up
// to the named one without storing anything
func (s *libSvc) PreviewLibrary(ctx context.Context, name string) (*LibraryPreview, error) {
	ctx, span := otel.StartLibrarySpan(ctx, s.tracer, "service.PreviewLibrary", name,
		otel.AttrCatalogType.String(s.config.Catalog.GetType()))
	defer span.End()

	libs, err := library.Build(s.config)
	if err != nil {
		err = fmt.Errorf("failed to build libraries: %w", err)
		otel.RecordError(span, err)
		return nil, err
	}
	if library.Find(libs, name) == nil {
		err := fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
		otel.RecordError(span, err)
		return nil, err
	}

	handler, err := s.handlerFactory.CreateHandler(s.config.Catalog.GetType())
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to create source handler: %w", err)
	}
	fetched, err := handler.FetchCatalog(ctx, s.config)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	refs, err := s.partitioner.Preview(ctx, catalog.NewSnapshot(fetched.Database), libs, name)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to preview library %s: %w", name, err)
	}
	if refs == nil {
		refs = []library.Ref{}
	}

	slog.Debug("Library preview computed",
		"library", name,
		"assets", len(refs),
		"catalog_hash", fetched.Hash)

	otel.SetResultCount(span, len(refs))
	return &LibraryPreview{
		Name:        name,
		CatalogHash: fetched.Hash,
		Revision:    fetched.Revision,
		Assets:      refs,
	}, nil
}

// loadOutput returns the cached output, re-reading storage once the cache expires
func (s *libSvc) loadOutput(ctx context.Context) (*storage.Output, error) {
	s.mu.RLock()
	if s.output != nil && time.Since(s.lastFetch) <= s.cacheDuration {
		out := s.output
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.output != nil && time.Since(s.lastFetch) <= s.cacheDuration {
		return s.output, nil
	}

	out, err := s.storageManager.Get(ctx, s.config.GetName())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotReady
		}
		if s.output != nil {
			slog.Warn("Failed to reload partition output, serving cached copy", "error", err)
			return s.output, nil
		}
		return nil, fmt.Errorf("failed to load partition output: %w", err)
	}

	s.output = out
	s.lastFetch = time.Now()
	return out, nil
}
