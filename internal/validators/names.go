// Package validators checks names that end up in file paths and HTTP routes.
package validators

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxRunNameLength     = 63
	maxLibraryNameLength = 200
)

// Run names become directory names, so they are restricted to a portable set
var runNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// ValidateRunName validates the name of a partition run.
//
// Examples of valid names: windows, ps5-release, build_2024.1
//
// Examples of invalid names: .hidden, linux/x64, release-
func ValidateRunName(name string) error {
	if name == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	if len(name) > maxRunNameLength {
		return fmt.Errorf("run name exceeds maximum length of %d characters", maxRunNameLength)
	}
	if !runNamePattern.MatchString(name) {
		return fmt.Errorf(
			"run name '%s' is invalid. Name must start and end with alphanumeric characters, "+
				"and may contain dots, underscores, and hyphens in the middle",
			name,
		)
	}
	return nil
}

// ValidateLibraryName validates a library name. Library names are free text
// but must be printable and carry no surrounding whitespace.
func ValidateLibraryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("library name cannot be empty")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("library name '%s' has leading or trailing whitespace", name)
	}
	if len(name) > maxLibraryNameLength {
		return fmt.Errorf("library name exceeds maximum length of %d characters", maxLibraryNameLength)
	}
	if strings.IndexFunc(name, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return fmt.Errorf("library name %q contains non-printable characters", name)
	}
	return nil
}

// IsValidRunName is a boolean wrapper around ValidateRunName
func IsValidRunName(name string) bool {
	return ValidateRunName(name) == nil
}
