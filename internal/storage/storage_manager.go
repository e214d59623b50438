package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/versions"
)

const (
	// OutputFileName is the name of the partition output document
	OutputFileName = "libraries.json"

	// BinaryFileExtension is the extension of per-library binary ref files
	BinaryFileExtension = ".bin"

	lockRetryDelay = 50 * time.Millisecond
)

// ErrNotFound is returned when no output has been stored for a run name
var ErrNotFound = errors.New("partition output not found")

// StorageManager defines the interface for partition output persistence
type StorageManager interface {
	// Store saves an output, replacing the previous output of the same run name
	Store(ctx context.Context, out *Output) error

	// Get retrieves the output stored for a run name
	Get(ctx context.Context, name string) (*Output, error)

	// Delete removes the output stored for a run name
	Delete(ctx context.Context, name string) error
}

// fileStorageManager implements StorageManager using the local filesystem
type fileStorageManager struct {
	basePath string
}

// NewFileStorageManager creates a new file-based storage manager
func NewFileStorageManager(basePath string) StorageManager {
	return &fileStorageManager{
		basePath: basePath,
	}
}

// Store writes each library's binary file and then the output document.
// Binary files of libraries that are no longer packaged are removed.
func (f *fileStorageManager) Store(ctx context.Context, out *Output) error {
	if out == nil {
		return fmt.Errorf("output cannot be nil")
	}
	if out.Name == "" {
		return fmt.Errorf("output name is required")
	}

	dir := f.outputDir(out.Name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	unlock, err := f.lock(ctx, out.Name, false)
	if err != nil {
		return err
	}
	defer unlock()

	written := make(map[string]struct{}, len(out.Libraries))
	for i := range out.Libraries {
		lib := &out.Libraries[i]
		if lib.BinaryFile == "" {
			lib.BinaryFile = binaryFileName(lib.Name)
		}
		data, err := library.EncodeRefs(lib.Assets)
		if err != nil {
			return fmt.Errorf("failed to encode library %s: %w", lib.Name, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, lib.BinaryFile), data); err != nil {
			return fmt.Errorf("failed to write library %s: %w", lib.Name, err)
		}
		written[lib.BinaryFile] = struct{}{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal partition output: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, OutputFileName), data); err != nil {
		return fmt.Errorf("failed to write partition output: %w", err)
	}

	removeStaleBinaries(dir, written)

	slog.Debug("Partition output stored",
		"name", out.Name,
		"libraries", len(out.Libraries),
		"path", dir)
	return nil
}

// Get reads and parses the output document
func (f *fileStorageManager) Get(ctx context.Context, name string) (*Output, error) {
	unlock, err := f.lock(ctx, name, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	filePath := filepath.Join(f.outputDir(name), OutputFileName)

	//nolint:gosec // File path is internally managed by StorageManager, not user input
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read partition output: %w", err)
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal partition output: %w", err)
	}
	if err := versions.CheckOutputFormat(out.FormatVersion); err != nil {
		return nil, fmt.Errorf("partition output %s: %w", name, err)
	}

	return &out, nil
}

// Delete removes the output directory
func (f *fileStorageManager) Delete(ctx context.Context, name string) error {
	unlock, err := f.lock(ctx, name, false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.RemoveAll(f.outputDir(name)); err != nil {
		return fmt.Errorf("failed to delete partition output: %w", err)
	}
	return nil
}

func (f *fileStorageManager) outputDir(name string) string {
	return filepath.Join(f.basePath, safeFileName(name))
}

// lock takes the run name's file lock, shared for readers
func (f *fileStorageManager) lock(ctx context.Context, name string, shared bool) (func(), error) {
	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fileLock := flock.New(filepath.Join(f.basePath, safeFileName(name)+".lock"))

	var locked bool
	var err error
	if shared {
		locked, err = fileLock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = fileLock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock partition output: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock partition output %s", name)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			slog.Warn("Failed to unlock partition output", "name", name, "error", err)
		}
	}, nil
}

// writeFileAtomic writes to a temporary file and renames it over path
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}

func removeStaleBinaries(dir string, keep map[string]struct{}) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+BinaryFileExtension))
	if err != nil {
		return
	}
	for _, path := range matches {
		if _, ok := keep[filepath.Base(path)]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove stale library file", "path", path, "error", err)
		}
	}
}

func binaryFileName(libraryName string) string {
	return safeFileName(libraryName) + BinaryFileExtension
}

// safeFileName replaces every character outside [A-Za-z0-9._-] with '_'
func safeFileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if safe == "" || strings.Trim(safe, ".") == "" {
		return "_" + safe
	}
	return safe
}
