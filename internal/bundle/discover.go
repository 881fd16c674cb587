package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoBundle is returned when discovery finds no bundle matching the
// configured pattern.
var ErrNoBundle = errors.New("no bundle found")

// Discover returns the newest file in dir matching pattern, by modification
// time. It is used when no explicit bundle path is given: the most recently
// downloaded bundle is almost always the one being installed.
func Discover(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("match pattern %q: %w", pattern, err)
	}

	var (
		newest     string
		newestInfo os.FileInfo
	)

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}

		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest, newestInfo = match, info
		}
	}

	if newest == "" {
		return "", fmt.Errorf("%w: pattern %q in %q", ErrNoBundle, pattern, dir)
	}

	return newest, nil
}
