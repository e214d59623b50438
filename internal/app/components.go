package app

import (
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/storage"
	"github.com/stacklok/asset-librarian/internal/sync/coordinator"
	"github.com/stacklok/asset-librarian/internal/watch"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Coordinator schedules partition runs in the background
	Coordinator coordinator.Coordinator

	// LibraryService serves stored libraries and previews
	LibraryService service.LibraryService

	// StorageManager persists partition output
	StorageManager storage.StorageManager

	// CatalogWatcher triggers runs when a file catalog changes; nil for other sources
	CatalogWatcher *watch.FileWatcher
}
