package desktop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoThemeIndex is returned when no system-wide hicolor descriptor can
// be found to seed the user theme. Icon lookup may degrade without one,
// but the installation itself stays valid.
var ErrNoThemeIndex = errors.New("no system hicolor index.theme found")

// FindThemeIndex returns the first candidate path that is a regular file.
func FindThemeIndex(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}

	return "", false
}

// EnsureThemeIndex makes sure the user theme carries an index.theme.
// An existing descriptor is left untouched. Otherwise the first available
// system candidate is copied in and its path returned. Without any
// candidate, ErrNoThemeIndex is returned.
func EnsureThemeIndex(localPath string, candidates []string) (string, error) {
	if _, err := os.Stat(localPath); err == nil {
		return "", nil
	}

	source, found := FindThemeIndex(candidates)
	if !found {
		return "", ErrNoThemeIndex
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create theme directory: %w", err)
	}

	if err := copyFile(source, localPath, 0o644); err != nil {
		return "", fmt.Errorf("seed theme descriptor: %w", err)
	}

	return source, nil
}
