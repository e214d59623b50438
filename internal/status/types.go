package status

import "time"

// RunPhase represents the current phase of a partition run
type RunPhase string

const (
	// RunPhaseRunning means a run is in progress
	RunPhaseRunning RunPhase = "Running"

	// RunPhaseComplete means the last run completed successfully
	RunPhaseComplete RunPhase = "Complete"

	// RunPhaseFailed means the last run failed
	RunPhaseFailed RunPhase = "Failed"
)

// RunStatus represents the state of partition runs for one run name
type RunStatus struct {
	// Phase represents the current run phase
	Phase RunPhase `json:"phase,omitempty"`

	// Message provides additional information about the run status
	Message string `json:"message,omitempty"`

	// LastAttempt is the timestamp of the last run attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastRunTime is the timestamp of the last successful run
	LastRunTime *time.Time `json:"lastRunTime,omitempty"`

	// LastRunID is the id of the output written by the last successful run
	LastRunID string `json:"lastRunId,omitempty"`

	// LastCatalogHash is the hash of the catalog document of the last successful run.
	// Used to detect changes in source data
	LastCatalogHash string `json:"lastCatalogHash,omitempty"`

	// LastConfigHash is the hash of the library configuration of the last successful run
	LastConfigHash string `json:"lastConfigHash,omitempty"`

	// LibraryCount is the number of packaged libraries in the last output
	LibraryCount int `json:"libraryCount,omitempty"`

	// AssetCount is the number of packaged assets in the last output
	AssetCount int `json:"assetCount,omitempty"`

	// RemainingCount is the number of assets no consuming library claimed
	RemainingCount int `json:"remainingCount,omitempty"`

	// SyncSchedule is the sync interval from configuration (e.g., "30m", "1h").
	// Empty when the catalog is only partitioned on demand
	SyncSchedule string `json:"syncSchedule,omitempty"`
}
