package service

import (
	"encoding/base64"
	"fmt"
)

// DecodeCursor decodes a base64-encoded cursor into the name of the last
// library of the previous page. Returns an empty string if the cursor is empty.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("failed to decode cursor: %w", err)
	}
	if len(decoded) == 0 {
		return "", fmt.Errorf("invalid cursor format: empty library name")
	}

	return string(decoded), nil
}

// EncodeCursor encodes a library name into a base64 cursor string
func EncodeCursor(name string) string {
	return base64.StdEncoding.EncodeToString([]byte(name))
}
