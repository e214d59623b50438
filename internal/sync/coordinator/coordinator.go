package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/status"
	pkgsync "github.com/stacklok/asset-librarian/internal/sync"
	"github.com/stacklok/asset-librarian/internal/telemetry"
)

// Coordinator manages background partition scheduling and execution
type Coordinator interface {
	// Start begins background run coordination.
	// Blocks until the context is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator
	Stop() error

	// RunOnce performs a run immediately and persists its status
	RunOnce(ctx context.Context) (*pkgsync.Result, *pkgsync.Error)

	// Status returns a copy of the current run status
	Status() *status.RunStatus
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager           pkgsync.Manager
	config            *config.Config
	statusPersistence status.StatusPersistence

	mu         gosync.Mutex
	runStatus  *status.RunStatus
	cancelFunc context.CancelFunc
	done       chan struct{}

	pollingInterval time.Duration
	syncMetrics     *telemetry.SyncMetrics
	trigger         <-chan struct{}
}

var _ Coordinator = (*defaultCoordinator)(nil)

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithPollingInterval overrides the interval between run checks
func WithPollingInterval(interval time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.pollingInterval = interval
	}
}

// WithTrigger sets a channel that requests an immediate run, such as changes
// reported by a catalog file watcher
func WithTrigger(trigger <-chan struct{}) Option {
	return func(c *defaultCoordinator) {
		c.trigger = trigger
	}
}

// New creates a new coordinator with injected dependencies
func New(
	manager pkgsync.Manager,
	statusPersistence status.StatusPersistence,
	cfg *config.Config,
	opts ...Option,
) Coordinator {
	c := &defaultCoordinator{
		manager:           manager,
		statusPersistence: statusPersistence,
		config:            cfg,
		runStatus:         &status.RunStatus{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins background run coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	name := c.config.GetName()

	coordCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	if c.cancelFunc != nil {
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("coordinator already started")
	}
	c.cancelFunc = cancel
	c.done = done
	c.mu.Unlock()

	defer func() {
		close(done)
		slog.Info("Background sync coordinator shutting down", "name", name)
	}()

	if err := c.loadStatus(coordCtx); err != nil {
		return err
	}

	interval := c.pollingInterval
	if interval <= 0 {
		interval = calculatePollingInterval(getSyncInterval(c.config.SyncPolicy))
	}
	slog.Info("Starting background sync coordinator",
		"name", name,
		"interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.checkRun(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.checkRun(coordCtx)
		case <-c.trigger:
			c.triggeredRun(coordCtx)
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping", "name", name)
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancelFunc, c.done
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		<-done
	}
	return nil
}

// RunOnce performs a run without consulting Manager.ShouldRun
func (c *defaultCoordinator) RunOnce(ctx context.Context) (*pkgsync.Result, *pkgsync.Error) {
	if err := c.loadStatus(ctx); err != nil {
		return nil, &pkgsync.Error{Err: err, Message: err.Error(), Reason: pkgsync.ErrorReasonStatusFailed}
	}
	return c.performRun(ctx)
}

// Status returns a copy of the current run status
func (c *defaultCoordinator) Status() *status.RunStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := *c.runStatus
	return &st
}

// loadStatus reads the persisted status. A run left in progress by a previous
// process is marked failed so it is retried.
func (c *defaultCoordinator) loadStatus(ctx context.Context) error {
	name := c.config.GetName()

	loaded, err := c.statusPersistence.LoadStatus(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load run status: %w", err)
	}

	if loaded.Phase == status.RunPhaseRunning {
		slog.Warn("Previous run was interrupted", "name", name)
		loaded.Phase = status.RunPhaseFailed
		loaded.Message = "Run interrupted"
	}
	if c.config.SyncPolicy != nil {
		loaded.SyncSchedule = c.config.SyncPolicy.Interval
	}

	c.mu.Lock()
	c.runStatus = loaded
	c.mu.Unlock()
	return nil
}

// checkRun performs a run when the manager asks for one
func (c *defaultCoordinator) checkRun(ctx context.Context) {
	reason := c.manager.ShouldRun(ctx, c.config, c.Status())
	if !reason.ShouldRun() {
		slog.Debug("Run not needed",
			"name", c.config.GetName(),
			"reason", reason.String())
		return
	}

	slog.Info("Run needed",
		"name", c.config.GetName(),
		"reason", reason.String())
	c.performRun(ctx)
}

// triggeredRun runs unless a run is already in progress. The trigger means the
// catalog changed, so the interval is not consulted.
func (c *defaultCoordinator) triggeredRun(ctx context.Context) {
	if c.Status().Phase == status.RunPhaseRunning {
		slog.Debug("Run already in progress, ignoring trigger", "name", c.config.GetName())
		return
	}
	slog.Info("Run triggered", "name", c.config.GetName())
	c.performRun(ctx)
}

// performRun executes a run and persists the status before and after it
func (c *defaultCoordinator) performRun(ctx context.Context) (*pkgsync.Result, *pkgsync.Error) {
	name := c.config.GetName()
	sourceType := c.config.Catalog.GetType()
	startTime := time.Now()

	var attemptCount int
	c.withStatus(ctx, func(st *status.RunStatus) {
		st.Phase = status.RunPhaseRunning
		st.Message = "Run in progress"
		st.LastAttempt = &startTime
		st.AttemptCount++
		attemptCount = st.AttemptCount
	})

	slog.Info("Starting partition run", "name", name, "attempt", attemptCount)

	result, runErr := c.manager.PerformRun(ctx, c.config)
	duration := time.Since(startTime)

	now := time.Now()
	c.withStatus(ctx, func(st *status.RunStatus) {
		if runErr != nil {
			st.Phase = status.RunPhaseFailed
			st.Message = runErr.Message
			return
		}
		st.Phase = status.RunPhaseComplete
		st.Message = "Run completed successfully"
		st.AttemptCount = 0
		st.LastRunTime = &now
		st.LastRunID = result.RunID
		st.LastCatalogHash = result.Hash
		st.LastConfigHash = result.ConfigHash
		st.LibraryCount = result.LibraryCount
		st.AssetCount = result.AssetCount
		st.RemainingCount = result.RemainingCount
	})

	if runErr != nil {
		slog.Error("Partition run failed",
			"name", name,
			"reason", runErr.Reason,
			"error", runErr.Message)
		c.syncMetrics.RecordSyncDuration(ctx, sourceType, duration, false)
		return nil, runErr
	}

	hashPreview := result.Hash
	if len(hashPreview) > 8 {
		hashPreview = hashPreview[:8]
	}
	slog.Info("Partition run completed",
		"name", name,
		"libraries", result.LibraryCount,
		"assets", result.AssetCount,
		"hash", hashPreview,
		"duration", duration)

	c.syncMetrics.RecordSyncDuration(ctx, sourceType, duration, true)
	c.syncMetrics.RecordCatalogAssets(ctx, sourceType, result.CatalogAssetCount)
	return result, nil
}

// withStatus updates the status under the lock and persists it
func (c *defaultCoordinator) withStatus(ctx context.Context, fn func(*status.RunStatus)) {
	c.mu.Lock()
	fn(c.runStatus)
	snapshot := *c.runStatus
	c.mu.Unlock()

	if err := c.statusPersistence.SaveStatus(ctx, c.config.GetName(), &snapshot); err != nil {
		slog.Error("Failed to persist run status",
			"name", c.config.GetName(),
			"error", err)
	}
}
