package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// BundleExtension is the filename extension portable bundles carry.
const BundleExtension = ".AppImage"

// errUnnamedBundle is returned when a bundle filename yields no usable
// application name.
var errUnnamedBundle = errors.New("cannot derive application name from filename")

// platformTokens are filename segments that describe the build target
// rather than the application, and so never contribute to its identity.
var platformTokens = map[string]struct{}{
	"x86_64":  {},
	"x86-64":  {},
	"amd64":   {},
	"i386":    {},
	"i686":    {},
	"aarch64": {},
	"arm64":   {},
	"armhf":   {},
	"linux":   {},
}

// Info is the identity of a bundle, derived from its filename and metadata.
type Info struct {
	// Path is the absolute location of the bundle file.
	Path string
	// Slug is the lowercase machine name used for every derived artifact:
	// the relocated file, the wrapper, the icon and the desktop entry.
	Slug string
	// Name is the human-readable application name shown in launchers.
	Name string
	// Version is the release identifier parsed from the filename, if any.
	Version string
	// ModTime is the bundle file's modification time.
	ModTime time.Time
	// Size is the bundle file's size in bytes.
	Size int64
}

// TargetFilename returns the canonical filename the bundle is installed
// under, so repeated installs of new releases replace their predecessors.
func (i Info) TargetFilename() string {
	return i.Slug + BundleExtension
}

// Rename returns a copy with the display name replaced and the slug
// re-derived from it. A name that yields no usable slug keeps the old one.
func (i Info) Rename(name string) Info {
	i.Name = name

	if slug := slugify(name); usableSlug(slug) {
		i.Slug = slug
	}

	return i
}

// Describe derives a bundle's identity from its path and file metadata.
// The filename is split into name, version and platform segments:
// "Polaris-1.4.2-x86_64.AppImage" yields name "Polaris", version "1.4.2"
// and slug "polaris".
func Describe(path string) (Info, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Info{}, fmt.Errorf("resolve bundle path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return Info{}, fmt.Errorf("stat bundle: %w", err)
	}

	if stat.IsDir() {
		return Info{}, fmt.Errorf("bundle %q is a directory", absPath)
	}

	name, version, err := parseFilename(filepath.Base(absPath))
	if err != nil {
		return Info{}, err
	}

	// Empty and dot-only slugs would collapse derived artifact paths
	// into their parent directories.
	slug := slugify(name)
	if !usableSlug(slug) {
		return Info{}, fmt.Errorf("%w: %q", errUnnamedBundle, filepath.Base(absPath))
	}

	return Info{
		Path:    absPath,
		Slug:    slug,
		Name:    name,
		Version: version,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}, nil
}

// parseFilename splits a bundle filename into a display name and a version.
// Name segments run until the first version or platform segment.
func parseFilename(filename string) (name, version string, err error) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	var nameParts []string

	for _, segment := range splitSegments(stem) {
		if _, isPlatform := platformTokens[strings.ToLower(segment)]; isPlatform {
			continue
		}

		if isVersionSegment(segment) {
			if version == "" {
				version = strings.TrimPrefix(segment, "v")
			}

			continue
		}

		if version == "" {
			nameParts = append(nameParts, segment)
		}
	}

	if len(nameParts) == 0 {
		return "", "", fmt.Errorf("%w: %q", errUnnamedBundle, filename)
	}

	return strings.Join(nameParts, " "), version, nil
}

// splitSegments breaks a filename stem on dash, underscore and space.
func splitSegments(stem string) []string {
	raw := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})

	segments := make([]string, 0, len(raw))

	for _, segment := range raw {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	return segments
}

// isVersionSegment reports whether a segment looks like a release
// identifier: digits and dots, optionally prefixed with "v".
func isVersionSegment(segment string) bool {
	trimmed := strings.TrimPrefix(segment, "v")
	if trimmed == "" {
		return false
	}

	if !unicode.IsDigit(rune(trimmed[0])) {
		return false
	}

	for _, r := range trimmed {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}

	return true
}

// slugify lowers a display name into a machine name safe for filenames,
// desktop entry identifiers and command names.
func slugify(name string) string {
	var builder strings.Builder

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '+':
			builder.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			builder.WriteRune('-')
		}
	}

	return strings.Trim(builder.String(), "-")
}

// usableSlug reports whether a slug can safely name filesystem artifacts.
// Empty and dot-only slugs resolve to the artifact's parent directory.
func usableSlug(slug string) bool {
	return strings.Trim(slug, ".") != ""
}
