package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/sources"
	"github.com/stacklok/asset-librarian/internal/status"
)

func TestDefaultDataChangeDetector_IsDataChanged(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	currentHash, err := sources.NewFileSourceHandler().CurrentHash(context.Background(), cfg)
	require.NoError(t, err)

	detector := &DefaultDataChangeDetector{sourceHandlerFactory: sources.NewSourceHandlerFactory(nil, nil)}

	tests := []struct {
		name     string
		status   *status.RunStatus
		expected bool
	}{
		{name: "nil status", status: nil, expected: true},
		{name: "no previous hash", status: &status.RunStatus{}, expected: true},
		{name: "same hash", status: &status.RunStatus{LastCatalogHash: currentHash}, expected: false},
		{name: "different hash", status: &status.RunStatus{LastCatalogHash: "old"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			changed, err := detector.IsDataChanged(context.Background(), cfg, tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, changed)
		})
	}

	missing := &config.Config{Catalog: config.CatalogConfig{File: &config.FileConfig{Path: "/nonexistent/catalog.json"}}}
	changed, err := detector.IsDataChanged(context.Background(), missing, &status.RunStatus{LastCatalogHash: "old"})
	assert.Error(t, err)
	assert.True(t, changed)
}

func TestDefaultAutomaticSyncChecker_IsIntervalSyncNeeded(t *testing.T) {
	t.Parallel()

	checker := &DefaultAutomaticSyncChecker{}
	recent := time.Now().Add(-time.Minute)
	old := time.Now().Add(-2 * time.Hour)

	tests := []struct {
		name          string
		policy        *config.SyncPolicyConfig
		status        *status.RunStatus
		expectedNeed  bool
		expectedError bool
		zeroNextTime  bool
	}{
		{name: "no policy", policy: nil, status: &status.RunStatus{}, zeroNextTime: true},
		{name: "empty interval", policy: &config.SyncPolicyConfig{}, status: &status.RunStatus{}, zeroNextTime: true},
		{name: "invalid interval", policy: &config.SyncPolicyConfig{Interval: "often"}, expectedError: true, zeroNextTime: true},
		{name: "never attempted", policy: &config.SyncPolicyConfig{Interval: "1h"}, status: &status.RunStatus{}, expectedNeed: true},
		{name: "nil status", policy: &config.SyncPolicyConfig{Interval: "1h"}, status: nil, expectedNeed: true},
		{name: "attempted recently", policy: &config.SyncPolicyConfig{Interval: "1h"}, status: &status.RunStatus{LastAttempt: &recent}},
		{name: "interval elapsed", policy: &config.SyncPolicyConfig{Interval: "1h"}, status: &status.RunStatus{LastAttempt: &old}, expectedNeed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			need, next, err := checker.IsIntervalSyncNeeded(&config.Config{SyncPolicy: tt.policy}, tt.status)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedNeed, need)
			if tt.zeroNextTime {
				assert.True(t, next.IsZero())
			} else {
				assert.True(t, next.After(time.Now()), "next run time is in the future")
			}
		})
	}
}
