package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicPath(t *testing.T) {
	t.Parallel()

	publicPaths := []string{"/health", "/readiness", "/metrics"}

	tests := []struct {
		name        string
		path        string
		publicPaths []string
		want        bool
	}{
		{"exact match", "/health", publicPaths, true},
		{"subpath match", "/metrics/extra", publicPaths, true},
		{"no match", "/v1/libraries", publicPaths, false},
		{"nil public paths", "/health", nil, false},
		{"traversal to protected", "/health/../v1/libraries", publicPaths, false},
		{"traversal stays in public", "/metrics/a/../b", publicPaths, true},
		{"encoded path separators", "/health/..%2f..%2fv1/libraries", publicPaths, false},
		{"prefix is not a segment", "/healthcheck", publicPaths, false},
		{"trailing slash", "/health/", publicPaths, true},
		{"double slash", "//health", publicPaths, true},
		{"root makes all public", "/v1/libraries", []string{"/"}, true},
		{"case sensitive", "/Health", publicPaths, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPublicPath(tt.path, tt.publicPaths))
		})
	}
}

func TestIsExactPublicPath(t *testing.T) {
	t.Parallel()

	publicPaths := []string{"/v1/libraries"}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"exact match", "/v1/libraries", true},
		{"trailing slash", "/v1/libraries/", true},
		{"library detail", "/v1/libraries/Music", false},
		{"library preview", "/v1/libraries/Music/preview", false},
		{"traversal back to list", "/v1/libraries/Music/..", true},
		{"encoded separator", "/v1%2flibraries", false},
		{"other route", "/v1/other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsExactPublicPath(tt.path, publicPaths))
		})
	}
}
