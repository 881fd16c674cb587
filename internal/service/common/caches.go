//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"

	"github.com/appdock/appdock/internal/logger"
)

const (
	// desktopDatabaseTool rebuilds the desktop entry cache.
	desktopDatabaseTool = "update-desktop-database"
	// iconCacheTool rebuilds the icon theme cache.
	iconCacheTool = "gtk-update-icon-cache"
	// systemThemeDir is the system-wide hicolor theme location.
	systemThemeDir = "/usr/share/icons/hicolor"
)

// RefreshDesktopCaches asks the desktop environment to pick up new entries
// and icons. A system-wide refresh is attempted first; when elevation or
// the refresh itself fails, the user-scope refresh still covers the
// artifacts this tool installs. Missing tools are skipped: caches rebuild
// on the next session anyway.
func RefreshDesktopCaches(ctx context.Context, runner Runner, applicationsDir, themeDir string) {
	if _, err := runner.LookPath(desktopDatabaseTool); err != nil {
		logger.Warnf(ctx, "%s not found, skipping desktop database refresh", desktopDatabaseTool)
	} else if err = runner.RunPrivileged(ctx, desktopDatabaseTool); err != nil {
		logger.Infof(ctx, "System desktop database refresh failed, retrying in user scope: %v", err)

		if err = runner.Run(ctx, desktopDatabaseTool, applicationsDir); err != nil {
			logger.Warnf(ctx, "Desktop database refresh failed: %v", err)
		}
	}

	if _, err := runner.LookPath(iconCacheTool); err != nil {
		logger.Warnf(ctx, "%s not found, skipping icon cache refresh", iconCacheTool)
	} else if err = runner.RunPrivileged(ctx, iconCacheTool, "-f", "-t", systemThemeDir); err != nil {
		logger.Infof(ctx, "System icon cache refresh failed, retrying in user scope: %v", err)

		if err = runner.Run(ctx, iconCacheTool, "-f", "-t", themeDir); err != nil {
			logger.Warnf(ctx, "Icon cache refresh failed: %v", err)
		}
	}
}
