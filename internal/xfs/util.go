package xfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading tilde (~) with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
