// Package filesystem holds small path helpers shared by the adapters.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// ExpandHome replaces a leading "~" or "~/" with the home directory.
// Other paths are returned trimmed but otherwise untouched.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "~":
		return UserHomeDir()
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(UserHomeDir(), path[2:])
	default:
		return path
	}
}
