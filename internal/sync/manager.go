package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/asset-librarian/internal/catalog"
	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/partition"
	"github.com/stacklok/asset-librarian/internal/sources"
	"github.com/stacklok/asset-librarian/internal/status"
	"github.com/stacklok/asset-librarian/internal/storage"
)

// Result contains the result of a successful partition run
type Result struct {
	RunID      string
	Hash       string
	ConfigHash string
	Revision   string

	LibraryCount   int
	AssetCount     int
	RemainingCount int

	// CatalogAssetCount is the number of sound banks and media in the fetched catalog
	CatalogAssetCount int

	Output *storage.Output
}

// Reason explains the outcome of Manager.ShouldRun
type Reason int

const (
	// ReasonAlreadyInProgress means a run is in progress
	ReasonAlreadyInProgress Reason = iota
	// ReasonNotReady means no run has completed yet, or the last one failed
	ReasonNotReady
	// ReasonConfigChanged means the library configuration changed since the last run
	ReasonConfigChanged
	// ReasonSourceDataChanged means the catalog document changed
	ReasonSourceDataChanged
	// ReasonErrorCheckingChanges means the catalog hash could not be read
	ReasonErrorCheckingChanges
	// ReasonErrorCheckingSyncNeed means the sync interval could not be evaluated
	ReasonErrorCheckingSyncNeed
	// ReasonUpToDateWithPolicy means the interval elapsed but the catalog is unchanged
	ReasonUpToDateWithPolicy
	// ReasonUpToDateNoPolicy means nothing changed and no interval is configured
	ReasonUpToDateNoPolicy
)

// String returns the reason identifier
func (r Reason) String() string {
	switch r {
	case ReasonAlreadyInProgress:
		return "run-already-in-progress"
	case ReasonNotReady:
		return "not-ready"
	case ReasonConfigChanged:
		return "config-changed"
	case ReasonSourceDataChanged:
		return "source-data-changed"
	case ReasonErrorCheckingChanges:
		return "error-checking-data-changes"
	case ReasonErrorCheckingSyncNeed:
		return "error-checking-sync-need"
	case ReasonUpToDateWithPolicy:
		return "up-to-date-with-policy"
	case ReasonUpToDateNoPolicy:
		return "up-to-date-no-policy"
	default:
		return "unknown"
	}
}

// ShouldRun reports whether the reason calls for a run
func (r Reason) ShouldRun() bool {
	switch r {
	case ReasonNotReady, ReasonConfigChanged, ReasonSourceDataChanged, ReasonErrorCheckingChanges:
		return true
	default:
		return false
	}
}

// Error stages reported in Error.Reason
const (
	ErrorReasonHandlerCreationFailed = "HandlerCreationFailed"
	ErrorReasonValidationFailed      = "ValidationFailed"
	ErrorReasonFetchFailed           = "FetchFailed"
	ErrorReasonConfigurationFailed   = "ConfigurationFailed"
	ErrorReasonPartitionFailed       = "PartitionFailed"
	ErrorReasonStorageFailed         = "StorageFailed"
	ErrorReasonStatusFailed          = "StatusFailed"
)

// Error is a run failure together with the stage that failed
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(err error, reason, format string) *Error {
	return &Error{
		Err:     err,
		Message: fmt.Sprintf(format, err),
		Reason:  reason,
	}
}

// Manager manages partition runs
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/asset-librarian/internal/sync Manager
type Manager interface {
	// ShouldRun determines whether the catalog must be partitioned again
	ShouldRun(ctx context.Context, cfg *config.Config, runStatus *status.RunStatus) Reason

	// PerformRun fetches the catalog, partitions it and stores the output
	PerformRun(ctx context.Context, cfg *config.Config) (*Result, *Error)

	// Delete removes the stored output of a run name
	Delete(ctx context.Context, name string) error
}

// DataChangeDetector detects changes in source data
type DataChangeDetector interface {
	// IsDataChanged compares the current catalog hash with the last run's hash
	IsDataChanged(ctx context.Context, cfg *config.Config, runStatus *status.RunStatus) (bool, error)
}

// AutomaticSyncChecker handles automatic run timing
type AutomaticSyncChecker interface {
	// IsIntervalSyncNeeded returns whether the interval elapsed and when the next run is due
	IsIntervalSyncNeeded(cfg *config.Config, runStatus *status.RunStatus) (bool, time.Time, error)
}

// DefaultSyncManager is the default implementation of Manager
type DefaultSyncManager struct {
	sourceHandlerFactory sources.SourceHandlerFactory
	storageManager       storage.StorageManager
	partitioner          *partition.Partitioner
	dataChangeDetector   DataChangeDetector
	automaticSyncChecker AutomaticSyncChecker
}

var _ Manager = (*DefaultSyncManager)(nil)

// ManagerOption configures a DefaultSyncManager
type ManagerOption func(*DefaultSyncManager)

// WithPartitioner sets the partitioner used by runs
func WithPartitioner(p *partition.Partitioner) ManagerOption {
	return func(m *DefaultSyncManager) {
		m.partitioner = p
	}
}

// NewDefaultSyncManager creates a new DefaultSyncManager
func NewDefaultSyncManager(
	sourceHandlerFactory sources.SourceHandlerFactory,
	storageManager storage.StorageManager,
	opts ...ManagerOption,
) *DefaultSyncManager {
	m := &DefaultSyncManager{
		sourceHandlerFactory: sourceHandlerFactory,
		storageManager:       storageManager,
		dataChangeDetector:   &DefaultDataChangeDetector{sourceHandlerFactory: sourceHandlerFactory},
		automaticSyncChecker: &DefaultAutomaticSyncChecker{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.partitioner == nil {
		m.partitioner = partition.New()
	}
	return m
}

// ShouldRun determines whether a run is needed
func (s *DefaultSyncManager) ShouldRun(
	ctx context.Context,
	cfg *config.Config,
	runStatus *status.RunStatus,
) Reason {
	if runStatus != nil && runStatus.Phase == status.RunPhaseRunning {
		return ReasonAlreadyInProgress
	}

	if s.isRunNeededForState(runStatus) {
		slog.Debug("Run needed for state", "name", cfg.GetName())
		return ReasonNotReady
	}

	if s.isConfigChanged(cfg, runStatus) {
		slog.Debug("Library configuration changed", "name", cfg.GetName())
		return ReasonConfigChanged
	}

	intervalElapsed, _, err := s.automaticSyncChecker.IsIntervalSyncNeeded(cfg, runStatus)
	if err != nil {
		slog.Error("Failed to determine if interval has elapsed", "name", cfg.GetName(), "error", err)
		return ReasonErrorCheckingSyncNeed
	}
	if !intervalElapsed {
		if cfg.GetSyncInterval() > 0 {
			return ReasonUpToDateWithPolicy
		}
		return ReasonUpToDateNoPolicy
	}

	dataChanged, err := s.dataChangeDetector.IsDataChanged(ctx, cfg, runStatus)
	if err != nil {
		slog.Error("Failed to determine if data has changed", "name", cfg.GetName(), "error", err)
		return ReasonErrorCheckingChanges
	}

	slog.Debug("Checked data changes", "name", cfg.GetName(), "dataChanged", dataChanged)
	if dataChanged {
		return ReasonSourceDataChanged
	}
	return ReasonUpToDateWithPolicy
}

// isRunNeededForState reports whether the last run did not complete
func (*DefaultSyncManager) isRunNeededForState(runStatus *status.RunStatus) bool {
	return runStatus == nil || runStatus.Phase != status.RunPhaseComplete
}

// isConfigChanged compares the library configuration with the last applied one.
// A status without a config hash predates config tracking and is not a change.
func (*DefaultSyncManager) isConfigChanged(cfg *config.Config, runStatus *status.RunStatus) bool {
	if runStatus.LastConfigHash == "" {
		return false
	}
	currentHash, err := ConfigHash(cfg)
	if err != nil {
		slog.Error("Failed to hash library configuration", "error", err)
		return false
	}
	return currentHash != runStatus.LastConfigHash
}

// ConfigHash returns the SHA-256 of the configuration parts that affect the
// partition output: shared filters and libraries
func ConfigHash(cfg *config.Config) (string, error) {
	data, err := json.Marshal(struct {
		SharedFilters []config.SharedFilterConfig `json:"sharedFilters"`
		Libraries     []config.LibraryConfig      `json:"libraries"`
	}{cfg.SharedFilters, cfg.Libraries})
	if err != nil {
		return "", fmt.Errorf("failed to marshal library configuration: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// PerformRun fetches the catalog, partitions it and stores the output
func (s *DefaultSyncManager) PerformRun(ctx context.Context, cfg *config.Config) (*Result, *Error) {
	fetchResult, runErr := s.fetchCatalog(ctx, cfg)
	if runErr != nil {
		return nil, runErr
	}

	configHash, err := ConfigHash(cfg)
	if err != nil {
		return nil, newError(err, ErrorReasonConfigurationFailed, "Configuration failed: %v")
	}

	libs, err := library.Build(cfg)
	if err != nil {
		slog.Error("Failed to build libraries", "error", err)
		return nil, newError(err, ErrorReasonConfigurationFailed, "Configuration failed: %v")
	}

	snapshot := catalog.NewSnapshot(fetchResult.Database)
	partitionResult, err := s.partitioner.Apply(ctx, snapshot, libs, partition.Options{Record: true})
	if err != nil {
		slog.Error("Partition failed", "error", err)
		return nil, newError(err, ErrorReasonPartitionFailed, "Partition failed: %v")
	}

	out := storage.NewOutput(cfg.GetName(), fetchResult.Hash, libs, partitionResult)
	out.Revision = fetchResult.Revision
	if err := s.storageManager.Store(ctx, out); err != nil {
		slog.Error("Failed to store partition output", "error", err)
		return nil, newError(err, ErrorReasonStorageFailed, "Storage failed: %v")
	}

	slog.Info("Partition output stored",
		"name", cfg.GetName(),
		"runId", out.RunID,
		"libraries", len(out.Libraries),
		"assets", out.AssetCount(),
		"remaining", len(out.Remaining))

	return &Result{
		RunID:             out.RunID,
		Hash:              fetchResult.Hash,
		ConfigHash:        configHash,
		Revision:          fetchResult.Revision,
		LibraryCount:      len(out.Libraries),
		AssetCount:        out.AssetCount(),
		RemainingCount:    len(out.Remaining),
		CatalogAssetCount: len(snapshot.Sources),
		Output:            out,
	}, nil
}

// Delete removes the stored output of a run name
func (s *DefaultSyncManager) Delete(ctx context.Context, name string) error {
	return s.storageManager.Delete(ctx, name)
}

// fetchCatalog handles handler creation, validation and fetch
func (s *DefaultSyncManager) fetchCatalog(ctx context.Context, cfg *config.Config) (*sources.FetchResult, *Error) {
	handler, err := s.sourceHandlerFactory.CreateHandler(cfg.Catalog.GetType())
	if err != nil {
		slog.Error("Failed to create source handler", "error", err)
		return nil, newError(err, ErrorReasonHandlerCreationFailed, "Failed to create source handler: %v")
	}

	if err := handler.Validate(&cfg.Catalog); err != nil {
		slog.Error("Catalog source validation failed", "error", err)
		return nil, newError(err, ErrorReasonValidationFailed, "Catalog source validation failed: %v")
	}

	fetchResult, err := handler.FetchCatalog(ctx, cfg)
	if err != nil {
		slog.Error("Fetch operation failed", "error", err)
		return nil, newError(err, ErrorReasonFetchFailed, "Fetch failed: %v")
	}

	slog.Info("Catalog fetched from source",
		"type", cfg.Catalog.GetType(),
		"soundBanks", fetchResult.SoundBankCount,
		"media", fetchResult.MediaCount,
		"events", fetchResult.EventCount,
		"hash", fetchResult.Hash)

	return fetchResult, nil
}
