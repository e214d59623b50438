package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/httpclient"
)

// APISourceHandler fetches the catalog from an HTTP endpoint
type APISourceHandler struct {
	httpClient httpclient.Client
}

var _ SourceHandler = (*APISourceHandler)(nil)

// NewAPISourceHandler creates a new API source handler. When client is nil a
// retrying client is built per request using the configured timeout.
func NewAPISourceHandler(client httpclient.Client) *APISourceHandler {
	return &APISourceHandler{httpClient: client}
}

// Validate validates the API source configuration
func (*APISourceHandler) Validate(cat *config.CatalogConfig) error {
	if cat == nil || cat.GetType() != config.SourceTypeAPI {
		return fmt.Errorf("invalid source type: expected %s, got %s", config.SourceTypeAPI, catalogType(cat))
	}
	if cat.API.Endpoint == "" {
		return fmt.Errorf("api endpoint cannot be empty")
	}
	return nil
}

// FetchCatalog downloads and loads the catalog document
func (h *APISourceHandler) FetchCatalog(ctx context.Context, cfg *config.Config) (*FetchResult, error) {
	data, err := h.read(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result, err := loadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", cfg.Catalog.API.Endpoint, err)
	}
	return result, nil
}

// CurrentHash downloads the catalog document and hashes it
func (h *APISourceHandler) CurrentHash(ctx context.Context, cfg *config.Config) (string, error) {
	data, err := h.read(ctx, cfg)
	if err != nil {
		return "", err
	}
	return hashDocument(data), nil
}

func (h *APISourceHandler) read(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if err := h.Validate(&cfg.Catalog); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}
	endpoint := cfg.Catalog.API.Endpoint

	client := h.httpClient
	if client == nil {
		client = httpclient.NewDefaultClient(httpclient.WithTimeout(cfg.Catalog.API.GetTimeout()))
	}

	data, err := client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog from %s: %w", endpoint, err)
	}

	slog.Debug("Catalog fetched", "endpoint", endpoint, "bytes", len(data))
	return data, nil
}
