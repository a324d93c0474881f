// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"strings"
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// IsFilePath returns true if the string looks like a file path rather
// than a bare name. A string containing path separators (/, \) is
// treated as a path.
//
// Examples:
//   - "production" -> false (name)
//   - "./convert.yaml" -> true (relative path)
//   - "/etc/office2png/convert.yaml" -> true (absolute)
//   - "C:\configs\convert.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
