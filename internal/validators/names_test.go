package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRunName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		runName     string
		expectError string
	}{
		{name: "simple", runName: "windows"},
		{name: "with hyphens", runName: "ps5-release"},
		{name: "with dots and underscores", runName: "build_2024.1"},
		{name: "single character", runName: "a"},
		{name: "empty", runName: "", expectError: "cannot be empty"},
		{name: "leading dot", runName: ".hidden", expectError: "is invalid"},
		{name: "trailing hyphen", runName: "release-", expectError: "is invalid"},
		{name: "path separator", runName: "linux/x64", expectError: "is invalid"},
		{name: "parent directory", runName: "..", expectError: "is invalid"},
		{name: "space", runName: "my run", expectError: "is invalid"},
		{name: "too long", runName: strings.Repeat("a", 64), expectError: "maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRunName(tt.runName)
			if tt.expectError == "" {
				assert.NoError(t, err)
				assert.True(t, IsValidRunName(tt.runName))
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
			assert.False(t, IsValidRunName(tt.runName))
		})
	}
}

func TestValidateLibraryName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		libraryName string
		expectError string
	}{
		{name: "simple", libraryName: "Music"},
		{name: "spaces inside", libraryName: "Combat Weapons"},
		{name: "unicode", libraryName: "Musique d'ambiance"},
		{name: "empty", libraryName: "", expectError: "cannot be empty"},
		{name: "only whitespace", libraryName: "   ", expectError: "cannot be empty"},
		{name: "trailing whitespace", libraryName: "Music ", expectError: "whitespace"},
		{name: "control character", libraryName: "Mu\tsic", expectError: "non-printable"},
		{name: "too long", libraryName: strings.Repeat("x", 201), expectError: "maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateLibraryName(tt.libraryName)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}
