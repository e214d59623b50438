// Package app provides application lifecycle management for the library server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/asset-librarian/internal/config"
)

// LibrarianApp encapsulates all components needed to run the library API server
// with background partitioning
type LibrarianApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the coordinator and the catalog watcher in the background and
// then the HTTP server.
// Blocks until the HTTP server stops or encounters an error.
func (app *LibrarianApp) Start() error {
	go func() {
		if err := app.components.Coordinator.Start(app.ctx); err != nil {
			slog.Error("Partition coordinator failed", "error", err)
		}
	}()

	if w := app.components.CatalogWatcher; w != nil {
		go func() {
			if err := w.Watch(app.ctx); err != nil {
				slog.Error("Catalog watcher failed", "error", err)
			}
		}()
	}

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop stops the coordinator and then shuts down the HTTP server within timeout
func (app *LibrarianApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server")

	if err := app.components.Coordinator.Stop(); err != nil {
		slog.Error("Failed to stop partition coordinator", "error", err)
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *LibrarianApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *LibrarianApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the application components
func (app *LibrarianApp) Components() *AppComponents {
	return app.components
}
