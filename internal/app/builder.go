package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/asset-librarian/internal/api"
	"github.com/stacklok/asset-librarian/internal/auth"
	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/partition"
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/sources"
	"github.com/stacklok/asset-librarian/internal/status"
	"github.com/stacklok/asset-librarian/internal/storage"
	pkgsync "github.com/stacklok/asset-librarian/internal/sync"
	"github.com/stacklok/asset-librarian/internal/sync/coordinator"
	"github.com/stacklok/asset-librarian/internal/telemetry"
	"github.com/stacklok/asset-librarian/internal/watch"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 45 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	// statusDirName holds run status files inside the output directory
	statusDirName = ".status"

	tracerName = "github.com/stacklok/asset-librarian"
)

// LibrarianAppOptions is a function that configures the app builder
type LibrarianAppOptions func(*librarianAppConfig) error

// librarianAppConfig collects the builder inputs. Component overrides exist
// for tests; production wiring uses the defaults.
type librarianAppConfig struct {
	config *config.Config

	handlerFactory sources.SourceHandlerFactory
	syncManager    pkgsync.Manager
	storageManager storage.StorageManager

	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	dataDir string

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler

	watcher *watch.FileWatcher
}

func baseConfig(opts ...LibrarianAppOptions) (*librarianAppConfig, error) {
	cfg := &librarianAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.dataDir == "" {
		cfg.dataDir = cfg.config.GetOutputPath()
	}

	return cfg, nil
}

// NewLibrarianApp builds the server application
func NewLibrarianApp(
	ctx context.Context,
	opts ...LibrarianAppOptions,
) (*LibrarianApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if file := cfg.config.Catalog.File; file != nil {
		cfg.watcher = watch.NewFileWatcher(file.Path)
	}

	coord, err := buildSyncComponents(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	svc, err := buildServiceComponents(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &LibrarianApp{
		config: cfg.config,
		components: &AppComponents{
			Coordinator:    coord,
			LibraryService: svc,
			StorageManager: cfg.storageManager,
			CatalogWatcher: cfg.watcher,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// NewCoordinator builds only the run components, for one-shot commands
func NewCoordinator(opts ...LibrarianAppOptions) (coordinator.Coordinator, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildSyncComponents(cfg)
}

// NewLibraryService builds only the library service, for read-only commands
func NewLibraryService(opts ...LibrarianAppOptions) (service.LibraryService, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildServiceComponents(cfg)
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDataDirectory overrides the configured output path
func WithDataDirectory(dir string) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		if dir == "" {
			return fmt.Errorf("data directory cannot be empty")
		}
		cfg.dataDir = dir
		return nil
	}
}

// WithSourceHandlerFactory allows injecting a custom source handler factory
func WithSourceHandlerFactory(f sources.SourceHandlerFactory) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.handlerFactory = f
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager
func WithSyncManager(sm pkgsync.Manager) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithStorageManager allows injecting a custom storage manager
func WithStorageManager(sm storage.StorageManager) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.storageManager = sm
		return nil
	}
}

// WithMeterProvider sets the meter provider for partition, sync and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the tracer provider for partition, service and HTTP spans
func WithTracerProvider(tp trace.TracerProvider) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves a Prometheus scrape handler at /metrics
func WithMetricsHandler(h http.Handler) LibrarianAppOptions {
	return func(cfg *librarianAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func (b *librarianAppConfig) tracer() trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(tracerName)
}

// ensureShared creates the components shared by the sync and service sides
func (b *librarianAppConfig) ensureShared() error {
	if b.handlerFactory == nil {
		b.handlerFactory = sources.NewSourceHandlerFactory(nil, nil)
	}
	if b.storageManager == nil {
		if err := os.MkdirAll(b.dataDir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		b.storageManager = storage.NewFileStorageManager(b.dataDir)
	}
	return nil
}

// buildSyncComponents builds the sync manager and coordinator
func buildSyncComponents(b *librarianAppConfig) (coordinator.Coordinator, error) {
	slog.Info("Initializing sync components")

	if err := b.ensureShared(); err != nil {
		return nil, err
	}

	var coordOpts []coordinator.Option
	partitionOpts := []partition.Option{partition.WithTracer(b.tracer())}

	if b.meterProvider != nil {
		syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}
		if syncMetrics != nil {
			coordOpts = append(coordOpts, coordinator.WithSyncMetrics(syncMetrics))
		}

		partitionMetrics, err := telemetry.NewPartitionMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create partition metrics: %w", err)
		}
		partitionOpts = append(partitionOpts, partition.WithMetrics(partitionMetrics))
		slog.Info("Partition metrics enabled")
	}

	if b.syncManager == nil {
		b.syncManager = pkgsync.NewDefaultSyncManager(
			b.handlerFactory,
			b.storageManager,
			pkgsync.WithPartitioner(partition.New(partitionOpts...)),
		)
	}

	if b.watcher != nil {
		coordOpts = append(coordOpts, coordinator.WithTrigger(b.watcher.Changes()))
	}

	statusPersistence := status.NewFileStatusPersistence(filepath.Join(b.dataDir, statusDirName))
	coord := coordinator.New(b.syncManager, statusPersistence, b.config, coordOpts...)

	slog.Info("Sync components initialized successfully")
	return coord, nil
}

// buildServiceComponents builds the library service
func buildServiceComponents(b *librarianAppConfig) (service.LibraryService, error) {
	slog.Info("Initializing service components")

	if err := b.ensureShared(); err != nil {
		return nil, err
	}

	svc, err := service.New(b.config, b.storageManager, b.handlerFactory,
		service.WithTracer(b.tracer()))
	if err != nil {
		return nil, fmt.Errorf("failed to create library service: %w", err)
	}

	slog.Info("Service components initialized successfully")
	return svc, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *librarianAppConfig, svc service.LibraryService) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// metrics and tracing wrap everything else so rejected requests are observed too
	var observe []func(http.Handler) http.Handler
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			observe = append(observe, metricsMiddleware)
			slog.Info("HTTP metrics middleware enabled")
		}
	}
	if b.tracerProvider != nil {
		observe = append(observe, telemetry.TracingMiddleware(b.tracerProvider))
	}
	middlewares := append(observe, b.middlewares...)

	authMiddleware, err := auth.NewAuthMiddleware(b.config.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}
	middlewares = append(middlewares, authMiddleware)

	router := api.NewServer(svc,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
