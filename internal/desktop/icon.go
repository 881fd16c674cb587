package desktop

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// iconPermissions lets the desktop environment read installed icons.
const iconPermissions = 0o644

// InstallIcon copies an icon file into the theme tree, creating the size
// bucket directory as needed.
func InstallIcon(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create icon directory: %w", err)
	}

	if err := copyFile(src, dst, iconPermissions); err != nil {
		return fmt.Errorf("install icon: %w", err)
	}

	return nil
}

// copyFile copies src to dst with the given permissions, truncating any
// existing file.
func copyFile(src, dst string, perm os.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}

	defer source.Close()

	target, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		target.Close()

		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}

	return target.Close()
}
