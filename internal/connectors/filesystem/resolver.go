package filesystem

import (
	"path/filepath"
	"strings"
)

// ResolveRoot converts a source argument to a local directory.
// Handles file:// URIs and bare paths, and cleans the result.
func ResolveRoot(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return "."
	}
	return filepath.Clean(path)
}
