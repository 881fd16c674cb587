package install

import (
	"context"
	"crypto"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/appdock/appdock/internal/bundle"
	"github.com/appdock/appdock/internal/config"
	"github.com/appdock/appdock/internal/logger"
	"github.com/appdock/appdock/internal/service/common"

	// Ensure SHA512 is available for relocation verification.
	_ "crypto/sha512"
)

// relocationChecksumFunction verifies the relocated bundle against the
// source digest.
const relocationChecksumFunction crypto.Hash = crypto.SHA512

// relocate moves the bundle into the install directory under its canonical
// name, removing predecessor bundles of the same application. A bundle
// already at its target stays where it is.
func (i *installer) relocate(ctx context.Context) error {
	installDir := i.resolver.InstallDir()

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	if err := common.EnsureWritable(installDir); err != nil {
		return err
	}

	if err := common.EnsureDiskSpace(installDir, i.info.Size); err != nil {
		return err
	}

	target := filepath.Join(installDir, i.info.TargetFilename())

	if err := i.purgePredecessors(ctx, installDir, target); err != nil {
		return err
	}

	// String equality misses aliases such as a symlinked install
	// directory; treating an alias as a move would delete the bundle
	// through its other name.
	if i.info.Path == target || sameFile(i.info.Path, target) {
		logger.InfoKV(ctx, "Bundle already lives in the install directory", "path", target)

		i.installedPath = target

		return nil
	}

	logger.InfoKV(ctx, "Relocating bundle", "source", i.info.Path, "target", target)

	if _, err := os.Stat(target); os.IsNotExist(err) {
		file, createErr := os.Create(target)
		if createErr != nil {
			return fmt.Errorf("create target file: %w", createErr)
		}

		file.Close()
	}

	source, err := os.Open(i.info.Path)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: config.ExecutablePermissions,
		Checksum:   i.checksum,
		Hash:       relocationChecksumFunction,
	}

	if err = goupdate.Apply(source, options); err != nil {
		source.Close()

		return fmt.Errorf("write bundle to %q: %w", target, err)
	}

	source.Close()

	oldName := target + ".old"
	if _, err = os.Stat(oldName); err == nil {
		_ = os.Remove(oldName)
	}

	if err = os.Remove(i.info.Path); err != nil {
		logger.Warnf(ctx, "Could not remove source bundle %q: %v", i.info.Path, err)
	}

	i.installedPath = target

	return nil
}

// purgePredecessors removes bundles of the same application left in the
// install directory by earlier releases. The current source and target
// files are never touched.
func (i *installer) purgePredecessors(ctx context.Context, installDir, target string) error {
	matches, err := filepath.Glob(filepath.Join(installDir, i.cfg.BundlePattern))
	if err != nil {
		return fmt.Errorf("scan install directory: %w", err)
	}

	for _, match := range matches {
		if match == target || match == i.info.Path || sameFile(match, i.info.Path) {
			continue
		}

		predecessor, err := bundle.Describe(match)
		if err != nil || predecessor.Slug != i.info.Slug {
			continue
		}

		logger.InfoKV(ctx, "Removing predecessor bundle", "path", match)

		if err = os.Remove(match); err != nil {
			return fmt.Errorf("remove predecessor %q: %w", match, err)
		}
	}

	return nil
}

// authorize marks the installed bundle executable. Relocation already sets
// the mode; this also covers bundles that were installed in place.
func (i *installer) authorize(ctx context.Context) error {
	logger.InfoKV(ctx, "Marking bundle executable", "path", i.installedPath)

	return os.Chmod(i.installedPath, config.ExecutablePermissions)
}

// sameFile reports whether two paths name the same file. Either path being
// absent is not an error, just not the same file.
func sameFile(a, b string) bool {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false
	}

	bInfo, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(aInfo, bInfo)
}
