package install

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/appdock/appdock/internal/bundle"
	"github.com/appdock/appdock/internal/desktop"
	"github.com/appdock/appdock/internal/logger"
)

// extractFlag asks the bundle to unpack its own payload.
const extractFlag = "--appimage-extract"

// unpack extracts the bundle payload into a recreated cache directory.
// The payload is only needed to harvest the icon and is removed on cleanup.
func (i *installer) unpack(ctx context.Context) error {
	extractRoot := i.resolver.ExtractRoot(i.info.Slug)

	if err := os.RemoveAll(extractRoot); err != nil {
		return fmt.Errorf("clear extraction directory: %w", err)
	}

	if err := os.MkdirAll(extractRoot, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	i.extractDir = extractRoot

	logger.InfoKV(ctx, "Extracting bundle payload", "dir", extractRoot)

	cmdCtx, cancel := context.WithTimeout(ctx, i.cfg.CommandTimeout)
	defer cancel()

	if err := i.runner.RunIn(cmdCtx, extractRoot, i.installedPath, extractFlag); err != nil {
		return err
	}

	return nil
}

// installIcon harvests an icon from the extracted payload and installs it
// into the user's hicolor theme. A bundle without an icon is not an error;
// the launcher falls back to a generic one.
func (i *installer) installIcon(ctx context.Context) error {
	source, err := bundle.FindIcon(i.extractDir, i.cfg.IconSize)
	if err != nil {
		if errors.Is(err, bundle.ErrNoIcon) {
			logger.Warn(ctx, "No icon found in the bundle, the launcher will show a generic one")
			return nil
		}

		return err
	}

	target := i.resolver.IconPath(i.info.Slug, i.cfg.IconSize)

	logger.InfoKV(ctx, "Installing icon", "source", source, "target", target)

	if err = desktop.InstallIcon(source, target); err != nil {
		return err
	}

	i.iconPath = target

	return nil
}

// ensureThemeIndex makes sure icon lookup can see the user theme.
// A missing descriptor everywhere is only worth a warning.
func (i *installer) ensureThemeIndex(ctx context.Context) {
	source, err := desktop.EnsureThemeIndex(
		i.resolver.ThemeIndexPath(), i.resolver.SystemThemeIndexCandidates())

	switch {
	case errors.Is(err, desktop.ErrNoThemeIndex):
		logger.Warn(ctx, "No hicolor theme descriptor found, icon lookup may be degraded")
	case err != nil:
		logger.Warnf(ctx, "Could not seed theme descriptor: %v", err)
	case source != "":
		logger.InfoKV(ctx, "Seeded theme descriptor", "source", source)
	}
}
