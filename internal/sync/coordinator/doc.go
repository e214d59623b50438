// Package coordinator schedules partition runs in the background.
//
// The coordinator sits on top of sync.Manager and handles:
//
//   - an initial run check on startup
//   - periodic run checks on a jittered ticker derived from the sync interval
//   - run status persistence at every phase transition
//   - sync metrics
//   - graceful shutdown
//
// # Usage Example
//
//	manager := sync.NewDefaultSyncManager(factory, storageManager)
//	coord := coordinator.New(manager, status.NewFileStatusPersistence(dir), cfg)
//
//	go func() { _ = coord.Start(ctx) }()
//	defer coord.Stop()
//
// RunOnce performs a run immediately, bypassing Manager.ShouldRun, and is
// used by the partition command.
//
// # Thread Safety
//
// The coordinator keeps the current run status in memory. All access goes
// through an internal mutex, and Status returns a copy.
//
// # Error Handling
//
// Failed runs are logged and recorded with phase Failed; the coordinator keeps
// running and retries on the next tick. Status persistence errors are logged
// but do not stop the coordinator.
package coordinator
