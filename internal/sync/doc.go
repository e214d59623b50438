// Package sync decides when the catalog must be partitioned again and runs
// the partition pipeline.
//
// # Core Interfaces
//
//   - Manager: orchestrates partition runs (fetch, snapshot, partition, store)
//   - DataChangeDetector: detects catalog changes by comparing document hashes
//   - AutomaticSyncChecker: decides whether the configured interval has elapsed
//
// The sync/coordinator subpackage runs the manager on a ticker and persists
// the run status between attempts.
//
// # Run Decisions
//
// Manager.ShouldRun returns a Reason. Reason.ShouldRun reports whether a run
// is needed and Reason.String gives a stable identifier for logs.
//
// Reasons that start a run:
//   - ReasonNotReady: first run, or the last run did not complete
//   - ReasonConfigChanged: the library configuration hash changed
//   - ReasonSourceDataChanged: the interval elapsed and the catalog hash changed
//   - ReasonErrorCheckingChanges: the catalog hash could not be read, run anyway
//
// Reasons that skip a run:
//   - ReasonAlreadyInProgress: a run is in progress
//   - ReasonErrorCheckingSyncNeed: the sync interval could not be parsed
//   - ReasonUpToDateWithPolicy: the catalog is unchanged since the last run
//   - ReasonUpToDateNoPolicy: no sync interval is configured
//
// # Errors
//
// PerformRun returns an *Error carrying the failed stage in Reason, so callers
// can persist a readable message without inspecting the wrapped error.
package sync
