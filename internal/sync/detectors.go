package sync

import (
	"context"
	"time"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/sources"
	"github.com/stacklok/asset-librarian/internal/status"
)

// DefaultDataChangeDetector implements DataChangeDetector
type DefaultDataChangeDetector struct {
	sourceHandlerFactory sources.SourceHandlerFactory
}

// IsDataChanged checks if the catalog changed by comparing hashes
func (d *DefaultDataChangeDetector) IsDataChanged(
	ctx context.Context, cfg *config.Config, runStatus *status.RunStatus,
) (bool, error) {
	var lastHash string
	if runStatus != nil {
		lastHash = runStatus.LastCatalogHash
	}

	// Without a previous hash the data is considered changed
	if lastHash == "" {
		return true, nil
	}

	handler, err := d.sourceHandlerFactory.CreateHandler(cfg.Catalog.GetType())
	if err != nil {
		return true, err
	}

	currentHash, err := handler.CurrentHash(ctx, cfg)
	if err != nil {
		return true, err
	}

	return currentHash != lastHash, nil
}

// DefaultAutomaticSyncChecker implements AutomaticSyncChecker
type DefaultAutomaticSyncChecker struct{}

// IsIntervalSyncNeeded checks if a run is needed based on the sync interval.
// Returns (runNeeded, nextRunTime, error); nextRunTime is zero when no policy is configured
func (*DefaultAutomaticSyncChecker) IsIntervalSyncNeeded(
	cfg *config.Config, runStatus *status.RunStatus,
) (bool, time.Time, error) {
	if cfg.SyncPolicy == nil || cfg.SyncPolicy.Interval == "" {
		return false, time.Time{}, nil
	}

	interval, err := time.ParseDuration(cfg.SyncPolicy.Interval)
	if err != nil {
		return false, time.Time{}, err
	}

	now := time.Now()

	var lastAttempt *time.Time
	if runStatus != nil {
		lastAttempt = runStatus.LastAttempt
	}

	if lastAttempt == nil {
		return true, now.Add(interval), nil
	}

	nextRunTime := lastAttempt.Add(interval)
	if !now.Before(nextRunTime) {
		return true, now.Add(interval), nil
	}

	return false, nextRunTime, nil
}
