// Package service provides the business logic behind the library API
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gobwas/glob"

	"github.com/stacklok/asset-librarian/internal/library"
)

var (
	// ErrLibraryNotFound is returned when a library is not configured or not stored
	ErrLibraryNotFound = errors.New("library not found")
	// ErrNotReady is returned while no partition output has been stored
	ErrNotReady = errors.New("no partition output available")
	// ErrInvalidArgument is returned for malformed options and cursors
	ErrInvalidArgument = errors.New("invalid argument")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go LibraryService

// LibraryService defines the interface for library operations
type LibraryService interface {
	// CheckReadiness checks if a partition output is available to serve
	CheckReadiness(ctx context.Context) error

	// ListLibraries returns the packaged libraries of the last run in priority order
	ListLibraries(ctx context.Context, opts ...Option[ListLibrariesOptions]) (*LibraryList, error)

	// GetLibrary returns the stored assets of a library
	GetLibrary(ctx context.Context, name string) (*LibraryDetail, error)

	// PreviewLibrary computes what a library would contain against the current catalog
	PreviewLibrary(ctx context.Context, name string) (*LibraryPreview, error)
}

// Option is a function that sets an option for the ListLibraries operation
type Option[T ListLibrariesOptions] func(*T) error

// ListLibrariesOptions is the options for the ListLibraries operation
type ListLibrariesOptions struct {
	Name   glob.Glob
	Cursor string
	Limit  int
}

// WithName filters libraries by a glob pattern over their names
func WithName(pattern string) Option[ListLibrariesOptions] {
	return func(o *ListLibrariesOptions) error {
		if pattern == "" {
			return fmt.Errorf("invalid name pattern: %s", pattern)
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid name pattern %q: %w", pattern, err)
		}
		o.Name = g
		return nil
	}
}

// WithCursor resumes a listing after the library encoded in the cursor
func WithCursor(cursor string) Option[ListLibrariesOptions] {
	return func(o *ListLibrariesOptions) error {
		if cursor == "" {
			return fmt.Errorf("invalid cursor: %s", cursor)
		}
		o.Cursor = cursor
		return nil
	}
}

// WithLimit sets the maximum number of libraries returned
func WithLimit(limit int) Option[ListLibrariesOptions] {
	return func(o *ListLibrariesOptions) error {
		if limit <= 0 {
			return fmt.Errorf("invalid limit: %d", limit)
		}
		o.Limit = limit
		return nil
	}
}

// LibrarySummary describes one stored library without its assets
type LibrarySummary struct {
	Name        string `json:"name"`
	Fallthrough bool   `json:"fallthrough,omitempty"`
	AssetCount  int    `json:"assetCount"`
	BinaryFile  string `json:"binaryFile"`
}

// LibraryList is the result of ListLibraries
type LibraryList struct {
	RunID          string           `json:"runId"`
	RunAt          time.Time        `json:"runAt"`
	CatalogHash    string           `json:"catalogHash"`
	Revision       string           `json:"revision,omitempty"`
	Libraries      []LibrarySummary `json:"libraries"`
	RemainingCount int              `json:"remainingCount"`
	NextCursor     string           `json:"nextCursor,omitempty"`
}

// LibraryDetail is one stored library with its assets
type LibraryDetail struct {
	Name        string        `json:"name"`
	Fallthrough bool          `json:"fallthrough,omitempty"`
	RunID       string        `json:"runId"`
	RunAt       time.Time     `json:"runAt"`
	CatalogHash string        `json:"catalogHash"`
	Assets      []library.Ref `json:"assets"`
}

// LibraryPreview is what a library would contain if a run happened now
type LibraryPreview struct {
	Name        string        `json:"name"`
	CatalogHash string        `json:"catalogHash"`
	Revision    string        `json:"revision,omitempty"`
	Assets      []library.Ref `json:"assets"`
}
