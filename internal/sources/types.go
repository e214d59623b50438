package sources

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/stacklok/asset-librarian/internal/catalog"
	"github.com/stacklok/asset-librarian/internal/config"
)

//go:generate mockgen -destination=mocks/mock_source_handler.go -package=mocks -source=types.go SourceHandler,SourceHandlerFactory

// SourceHandler defines the interface for fetching catalog metadata from a source
type SourceHandler interface {
	// FetchCatalog retrieves and loads the catalog metadata document
	FetchCatalog(ctx context.Context, cfg *config.Config) (*FetchResult, error)

	// Validate checks that the catalog configuration is usable by this handler
	Validate(cat *config.CatalogConfig) error

	// CurrentHash returns the hash of the current document without loading it
	CurrentHash(ctx context.Context, cfg *config.Config) (string, error)
}

// FetchResult contains the result of a fetch operation
type FetchResult struct {
	// Database is the loaded catalog
	Database *catalog.Database

	// Hash is the SHA-256 of the raw metadata document
	Hash string

	// Revision identifies the source revision, such as a Git commit. May be empty.
	Revision string

	SoundBankCount int
	MediaCount     int
	EventCount     int
}

// NewFetchResult creates a FetchResult and fills in the asset counts
func NewFetchResult(db *catalog.Database, hash string) *FetchResult {
	result := &FetchResult{
		Database: db,
		Hash:     hash,
	}
	if db != nil {
		result.SoundBankCount = len(db.SoundBanks())
		result.MediaCount = len(db.MediaFiles())
		result.EventCount = len(db.Events())
	}
	return result
}

// SourceHandlerFactory creates source handlers based on source type
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given source type
	CreateHandler(sourceType string) (SourceHandler, error)
}

// loadDocument validates and loads a raw metadata document
func loadDocument(data []byte) (*FetchResult, error) {
	db, err := catalog.LoadValidated(data)
	if err != nil {
		return nil, err
	}
	return NewFetchResult(db, hashDocument(data)), nil
}

func hashDocument(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
