package coordinator

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/stacklok/asset-librarian/internal/config"
)

// defaultSyncInterval is used when no valid sync interval is configured
const defaultSyncInterval = time.Minute

// getSyncInterval extracts the sync interval from the policy configuration
func getSyncInterval(policy *config.SyncPolicyConfig) time.Duration {
	if policy != nil && policy.Interval != "" {
		if interval, err := time.ParseDuration(policy.Interval); err == nil && interval > 0 {
			return interval
		}
		slog.Warn("Invalid sync interval, using default",
			"interval", policy.Interval,
			"default", defaultSyncInterval)
	}

	return defaultSyncInterval
}

// calculatePollingInterval applies a jitter of up to 10% of base in either direction
func calculatePollingInterval(base time.Duration) time.Duration {
	jitter := base / 10
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + offset
}
