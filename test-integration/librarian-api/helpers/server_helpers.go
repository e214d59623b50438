package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"

	"github.com/stacklok/asset-librarian/internal/app"
	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/service"
)

// ServerTestHelper manages the librarian server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *app.LibrarianApp
	dataDir    string
}

// NewServerTestHelper creates a server helper listening on a free local port
func NewServerTestHelper(ctx context.Context, configPath string, dataDir string) (*ServerTestHelper, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dataDir:    dataDir,
	}, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// StartServer builds the application and starts it in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	librarian, err := app.NewLibrarianApp(s.ctx,
		app.WithConfig(cfg),
		app.WithAddress(s.address),
		app.WithDataDirectory(s.dataDir),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = librarian

	go func() {
		if err := librarian.Start(); err != nil {
			// the test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()
	return nil
}

// StopServer gracefully stops the server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits until the server answers /health
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// WaitForLibraries waits until a partition run has stored output and returns it
func (s *ServerTestHelper) WaitForLibraries(timeout time.Duration) *service.LibraryList {
	var list service.LibraryList
	gomega.Eventually(func() (int, error) {
		resp, err := s.GetLibraries("")
		if err != nil {
			return 0, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(&list)
	}, timeout, 200*time.Millisecond).Should(gomega.Equal(http.StatusOK), "Libraries should be partitioned")
	return &list
}

// GetLibraries makes a GET request to /v1/libraries with an optional query
func (s *ServerTestHelper) GetLibraries(query string) (*http.Response, error) {
	url := s.baseURL + "/v1/libraries"
	if query != "" {
		url += "?" + query
	}
	return s.httpClient.Get(url)
}

// GetLibrary makes a GET request to /v1/libraries/{name}
func (s *ServerTestHelper) GetLibrary(name string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/v1/libraries/%s", s.baseURL, name))
}

// GetPreview makes a GET request to /v1/libraries/{name}/preview
func (s *ServerTestHelper) GetPreview(name string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/v1/libraries/%s/preview", s.baseURL, name))
}

// GetReadiness makes a GET request to /readiness
func (s *ServerTestHelper) GetReadiness() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/readiness")
}

// DecodeJSON decodes and closes a response body
func DecodeJSON(resp *http.Response, v any) {
	defer func() { _ = resp.Body.Close() }()
	gomega.Expect(json.NewDecoder(resp.Body).Decode(v)).To(gomega.Succeed())
}

// OutputFile returns the path of a stored output file
func (s *ServerTestHelper) OutputFile(runName, file string) string {
	return filepath.Join(s.dataDir, runName, file)
}

// WriteConfigYAML writes a configuration file for the given catalog source.
// sourceConfig keys are "path" (file), "url", "path", "branch", "tag" (git),
// "endpoint" (api) and the optional "syncInterval".
func WriteConfigYAML(dir, name, sourceType string, sourceConfig map[string]string, librariesYAML string) string {
	configContent := fmt.Sprintf("name: %s\ncatalog:\n", name)

	switch sourceType {
	case config.SourceTypeGit:
		configContent += fmt.Sprintf("  git:\n    repository: %s\n    path: %s\n",
			sourceConfig["url"], sourceConfig["path"])
		if branch, ok := sourceConfig["branch"]; ok {
			configContent += fmt.Sprintf("    branch: %s\n", branch)
		}
		if tag, ok := sourceConfig["tag"]; ok {
			configContent += fmt.Sprintf("    tag: %s\n", tag)
		}
	case config.SourceTypeAPI:
		configContent += fmt.Sprintf("  api:\n    endpoint: %s\n", sourceConfig["endpoint"])
	case config.SourceTypeFile:
		configContent += fmt.Sprintf("  file:\n    path: %s\n", sourceConfig["path"])
	}

	if interval, ok := sourceConfig["syncInterval"]; ok {
		configContent += fmt.Sprintf("syncPolicy:\n  interval: %s\n", interval)
	}

	configContent += librariesYAML

	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte(configContent), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return configPath
}
