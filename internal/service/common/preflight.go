//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EnsureWritable verifies the current user can write into dir.
func EnsureWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}

	return nil
}

// EnsureDiskSpace verifies the filesystem holding dir has at least need
// bytes available.
func EnsureDiskSpace(dir string, need int64) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("query free space of %q: %w", dir, err)
	}

	free := stat.Bavail * uint64(stat.Bsize) //nolint:gosec // Block counts do not overflow uint64.
	if free < uint64(need) {
		return fmt.Errorf("not enough space in %q: %d bytes free, %d required", dir, free, need)
	}

	return nil
}
