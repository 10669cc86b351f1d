package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePath makes a relative path absolute against base. An empty base
// uses the working directory.
func ResolvePath(base, path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		base = wd
	}
	return filepath.Clean(filepath.Join(base, path)), nil
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
