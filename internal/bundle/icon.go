package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PayloadDirName is the directory a bundle's self-extraction produces.
const PayloadDirName = "squashfs-root"

// DirIconName is the bundle convention for a top-level icon,
// usually a symlink into the payload's theme tree.
const DirIconName = ".DirIcon"

// ErrNoIcon is returned when the extracted payload carries no usable icon.
var ErrNoIcon = errors.New("no icon found in extracted payload")

// FindIcon locates an application icon inside an extracted payload.
// It prefers the hicolor bucket matching size, then the bundle's top-level
// icon link, then any PNG at the payload root.
func FindIcon(extractDir string, size int) (string, error) {
	payload := filepath.Join(extractDir, PayloadDirName)

	bucket := filepath.Join(payload,
		"usr", "share", "icons", "hicolor",
		fmt.Sprintf("%dx%d", size, size), "apps", "*.png")
	if icon := firstRegularMatch(bucket); icon != "" {
		return icon, nil
	}

	dirIcon := filepath.Join(payload, DirIconName)
	if isRegularFile(dirIcon) {
		return dirIcon, nil
	}

	if icon := firstRegularMatch(filepath.Join(payload, "*.png")); icon != "" {
		return icon, nil
	}

	return "", fmt.Errorf("%w: %q", ErrNoIcon, payload)
}

// firstRegularMatch returns the first glob match that is a non-empty
// regular file. Glob results are sorted, so the choice is deterministic.
func firstRegularMatch(pattern string) string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return ""
	}

	for _, match := range matches {
		if isRegularFile(match) {
			return match
		}
	}

	return ""
}

// isRegularFile reports whether path is a non-empty regular file,
// following symlinks: bundle icons are commonly links into the payload.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
