package auth

import (
	"path"
	"strings"
)

// DefaultPublicPaths never require a token
var DefaultPublicPaths = []string{"/health", "/readiness", "/version", "/metrics"}

// IsPublicPath checks if a path should bypass authentication.
// Paths with encoded separators never match. The path is cleaned before
// comparison and matching is segment-aware, so /health matches /health/check
// but not /healthcheck.
func IsPublicPath(requestPath string, publicPaths []string) bool {
	cleanPath, ok := cleanRequestPath(requestPath)
	if !ok {
		return false
	}

	for _, publicPath := range publicPaths {
		cleanPublicPath := cleanAbsolute(publicPath)
		if cleanPublicPath == "/" {
			return true
		}
		if cleanPath == cleanPublicPath || strings.HasPrefix(cleanPath, cleanPublicPath+"/") {
			return true
		}
	}
	return false
}

// IsExactPublicPath is IsPublicPath without subpath matching: /v1/libraries
// matches only the list route, never /v1/libraries/{name}.
func IsExactPublicPath(requestPath string, publicPaths []string) bool {
	cleanPath, ok := cleanRequestPath(requestPath)
	if !ok {
		return false
	}

	for _, publicPath := range publicPaths {
		if cleanPath == cleanAbsolute(publicPath) {
			return true
		}
	}
	return false
}

// cleanRequestPath rejects encoded separators and cleans the rest
func cleanRequestPath(requestPath string) (string, bool) {
	lowerPath := strings.ToLower(requestPath)
	if strings.Contains(lowerPath, "%2f") || strings.Contains(lowerPath, "%2e") {
		return "", false
	}
	return cleanAbsolute(requestPath), true
}

func cleanAbsolute(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
