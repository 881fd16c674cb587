package install

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/appdock/appdock/internal/logger"
)

const (
	// libraryProbeTool lists the shared libraries known to the loader.
	libraryProbeTool = "ldconfig"
	// packageInstallTool installs distribution packages.
	packageInstallTool = "apt-get"
)

// ErrDependencyMissing is returned when the operator accepted the runtime
// dependency installation and it failed. A decline never raises it.
var ErrDependencyMissing = errors.New("runtime dependency could not be installed")

// ensureDependency checks that the shared library bundles need at runtime
// is present and offers to install the providing package. A decline keeps
// the installation going: every artifact is still valid, the application
// itself just may not start until the library appears.
func (i *installer) ensureDependency(ctx context.Context) error {
	library := i.cfg.Dependency.Library
	if library == "" {
		return nil
	}

	logger.InfoKV(ctx, "Checking runtime dependency", "library", library)

	if i.hasLibrary(ctx, library) {
		logger.Info(ctx, "Runtime dependency is present")
		return nil
	}

	pkg := i.cfg.Dependency.Package

	if _, err := i.runner.LookPath(packageInstallTool); err != nil {
		logger.Warnf(ctx, "Library %s is missing and %s is unavailable, install %s manually",
			library, packageInstallTool, pkg)

		i.depDeclined = true

		return nil
	}

	if !i.prompter.Confirm(fmt.Sprintf("Library %s is missing. Install package %s now?", library, pkg)) {
		logger.Warnf(ctx, "Continuing without %s: the application may fail to start", library)

		i.depDeclined = true

		return nil
	}

	logger.InfoKV(ctx, "Installing package", "package", pkg)

	if err := i.runner.RunPrivileged(ctx, packageInstallTool, "install", "-y", pkg); err != nil {
		return fmt.Errorf("package %s (%v): %w", pkg, err, ErrDependencyMissing)
	}

	return nil
}

// hasLibrary reports whether the loader knows the shared library. When the
// probe tool is unavailable the library is assumed present and no prompt
// is shown.
func (i *installer) hasLibrary(ctx context.Context, library string) bool {
	output, err := i.runner.Output(ctx, libraryProbeTool, "-p")
	if err != nil {
		logger.Warnf(ctx, "Cannot probe shared libraries: %v", err)
		return true
	}

	return strings.Contains(output, library)
}
