package helpers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// MockCatalogServer serves a catalog document that tests can replace
type MockCatalogServer struct {
	*httptest.Server

	mu       sync.Mutex
	catalog  []byte
	status   int
	requests atomic.Int32
}

// NewMockCatalogServer starts a server answering /catalog.json with c
func NewMockCatalogServer(c *Catalog) *MockCatalogServer {
	m := &MockCatalogServer{catalog: c.JSON(), status: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// CatalogURL is the endpoint to configure
func (m *MockCatalogServer) CatalogURL() string {
	return m.URL + "/catalog.json"
}

// SetCatalog replaces the served catalog
func (m *MockCatalogServer) SetCatalog(c *Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = c.JSON()
}

// SetStatus makes the server answer with status instead of the catalog
func (m *MockCatalogServer) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// Requests returns how many catalog requests were served
func (m *MockCatalogServer) Requests() int {
	return int(m.requests.Load())
}

func (m *MockCatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/catalog.json" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	m.requests.Add(1)

	m.mu.Lock()
	status, body := m.status, m.catalog
	m.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
