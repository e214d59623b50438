// Package v1 provides the REST API handlers for library access.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/asset-librarian/internal/api/common"
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/versions"
)

// Routes handles HTTP requests for the library endpoints
type Routes struct {
	service service.LibraryService
}

// NewRoutes creates a new Routes instance with the given service
func NewRoutes(svc service.LibraryService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates the router for the /v1 library endpoints
func Router(svc service.LibraryService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/libraries", routes.listLibraries)
	r.Route("/libraries/{name}", func(r chi.Router) {
		r.Get("/", routes.getLibrary)
		r.Get("/preview", routes.previewLibrary)
	})

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.LibraryService) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)
	return r
}

// listLibraries handles GET /v1/libraries
func (routes *Routes) listLibraries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var opts []service.Option[service.ListLibrariesOptions]
	if name := query.Get("name"); name != "" {
		opts = append(opts, service.WithName(name))
	}
	if cursor := query.Get("cursor"); cursor != "" {
		opts = append(opts, service.WithCursor(cursor))
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be a positive integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}

	list, err := routes.service.ListLibraries(r.Context(), opts...)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, list, http.StatusOK)
}

// getLibrary handles GET /v1/libraries/{name}
func (routes *Routes) getLibrary(w http.ResponseWriter, r *http.Request) {
	name, err := common.LibraryNameParam(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := routes.service.GetLibrary(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, detail, http.StatusOK)
}

// previewLibrary handles GET /v1/libraries/{name}/preview
func (routes *Routes) previewLibrary(w http.ResponseWriter, r *http.Request) {
	name, err := common.LibraryNameParam(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	preview, err := routes.service.PreviewLibrary(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, preview, http.StatusOK)
}

// writeServiceError maps service errors onto status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrLibraryNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrNotReady):
		common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	default:
		slog.Error("Library request failed", "error", err)
		common.WriteErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(svc service.LibraryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "Service not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
