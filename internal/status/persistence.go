// Package status provides run status tracking and persistence.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for run status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the run status of a run name
	SaveStatus(ctx context.Context, name string, status *RunStatus) error

	// LoadStatus loads the run status of a run name.
	// Returns an empty RunStatus if the file doesn't exist (first run)
	LoadStatus(ctx context.Context, name string) (*RunStatus, error)

	// LoadAllStatus loads the run status of every run name
	LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error)
}

// fileStatusPersistence implements StatusPersistence using local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence.
// basePath is the base directory where per-run status files are stored
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// SaveStatus saves the run status to a JSON file in a run-specific directory
func (f *fileStatusPersistence) SaveStatus(_ context.Context, name string, status *RunStatus) error {
	if name == "" {
		return fmt.Errorf("run name is required")
	}

	runDir := filepath.Join(f.basePath, name)
	if err := os.MkdirAll(runDir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for run '%s': %w", name, err)
	}

	filePath := filepath.Join(runDir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data for run '%s': %w", name, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for run '%s': %w", name, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for run '%s': %w", name, err)
	}

	return nil
}

// LoadStatus loads the run status from a JSON file.
// Returns an empty RunStatus if the file doesn't exist
func (f *fileStatusPersistence) LoadStatus(_ context.Context, name string) (*RunStatus, error) {
	filePath := filepath.Join(f.basePath, name, StatusFileName)

	// #nosec G304 -- filePath is built from basePath and a configured run name
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RunStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for run '%s': %w", name, err)
	}

	var status RunStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data for run '%s': %w", name, err)
	}

	return &status, nil
}

// LoadAllStatus loads the status of every run directory. Unreadable entries
// are logged and skipped.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error) {
	result := make(map[string]*RunStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		status, err := f.LoadStatus(ctx, name)
		if err != nil {
			slog.Warn("Skipping unreadable run status", "name", name, "error", err)
			continue
		}

		result[name] = status
	}

	return result, nil
}
