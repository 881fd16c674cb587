package install

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/appdock/appdock/internal/bundle"
	"github.com/appdock/appdock/internal/config"
	"github.com/appdock/appdock/internal/logger"
	"github.com/appdock/appdock/internal/paths"
	"github.com/appdock/appdock/internal/repository/record"
	"github.com/appdock/appdock/internal/service/common"
)

// Options are inputs accepted by the install entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// BundlePath is the bundle to install. Empty means the newest bundle
	// in the working directory matching the configured pattern.
	BundlePath string
	// Name overrides the display name derived from the filename.
	Name string
	// InstallDir overrides the configured bundle directory.
	InstallDir string
	// SkipDesktop leaves out launcher artifacts: icon, theme descriptor,
	// desktop entry and cache refresh. The wrapper is still installed.
	SkipDesktop bool
	// KeepRunning leaves running instances of the application untouched.
	KeepRunning bool

	// Runner executes external commands. Leave nil to run on the host.
	Runner common.Runner
	// Prompter asks the operator questions. Leave nil for the terminal.
	Prompter common.Prompter
	// HomeDir overrides the home directory artifact locations derive
	// from, for staged installs and tests.
	HomeDir string
	// SystemDataDirs overrides the data directories searched for a theme
	// descriptor. Only honored together with HomeDir.
	SystemDataDirs []string
}

// installer holds the state and capabilities of a single installation.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type installer struct {
	cfg      *config.Config    // Effective configuration after overrides.
	resolver *paths.Resolver   // Resolves every artifact location.
	runner   common.Runner     // External command execution.
	prompter common.Prompter   // Operator confirmations.
	records  record.Repository // Installation record store.

	info     bundle.Info // Identity of the bundle being installed.
	checksum []byte      // SHA-512 digest of the bundle contents.

	skipDesktop bool // Leave out launcher artifacts.

	installedPath string // Bundle location after relocation.
	extractDir    string // Transient payload extraction directory.
	iconPath      string // Installed icon, empty when none was found.
	entryPath     string // Desktop entry, empty when skipped.
	wrapperPath   string // Command installed on the system path.
	depDeclined   bool   // Operator declined the runtime dependency.
}

// Run executes the installation and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "install")

	inst, err := newInstaller(ctx, opts)
	if err != nil {
		return err
	}

	defer inst.cleanup(ctx)

	if err = inst.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	logger.Info(ctx, "Installation completed")

	return nil
}

// newInstaller resolves every input of the run: configuration, the bundle
// and its identity, the capability implementations and, last, elevated
// credentials, so no privileged step stalls on a password prompt later.
func newInstaller(ctx context.Context, opts *Options) (*installer, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.InstallDir != "" {
		cfg.InstallDir = opts.InstallDir
	}

	if opts.KeepRunning {
		cfg.KeepRunning = true
	}

	resolver := paths.NewResolver(cfg)
	if opts.HomeDir != "" {
		resolver = paths.NewResolverWithHome(cfg, opts.HomeDir, opts.SystemDataDirs...)
	}

	bundlePath := opts.BundlePath
	if bundlePath == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}

		bundlePath, err = bundle.Discover(workDir, cfg.BundlePattern)
		if err != nil {
			return nil, err
		}

		logger.InfoKV(ctx, "Discovered bundle", "path", bundlePath)
	}

	info, err := bundle.Describe(bundlePath)
	if err != nil {
		return nil, err
	}

	// The command line flag wins over the configured name.
	switch {
	case opts.Name != "":
		info = info.Rename(opts.Name)
	case cfg.AppName != "":
		info = info.Rename(cfg.AppName)
	}

	checksum, err := bundle.Checksum(info.Path)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = common.NewExecRunner()
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = common.NewConsolePrompter()
	}

	inst := &installer{
		cfg:         cfg,
		resolver:    resolver,
		runner:      runner,
		prompter:    prompter,
		records:     record.NewFileRepository(resolver.RecordPath()),
		info:        info,
		checksum:    checksum,
		skipDesktop: opts.SkipDesktop,
	}

	if err = runner.Prime(ctx); err != nil {
		return nil, fmt.Errorf("prime elevated privileges: %w", err)
	}

	return inst, nil
}

// Run executes the installation steps in order:
// 1) Ensure the runtime dependency.
// 2) Terminate running instances.
// 3) Relocate the bundle into the install directory.
// 4) Mark it executable.
// 5) Extract the payload and install the icon.
// 6) Ensure the icon theme descriptor.
// 7) Install the wrapper command.
// 8) Write the desktop entry and refresh caches.
// 9) Save the installation record.
func (i *installer) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Installing application",
		"name", i.info.Name, "version", i.info.Version, "bundle", i.info.Path)

	if err := i.ensureDependency(ctx); err != nil {
		return fmt.Errorf("ensure runtime dependency: %w", err)
	}

	if err := i.terminateRunning(ctx); err != nil {
		return fmt.Errorf("terminate running instances: %w", err)
	}

	if err := i.relocate(ctx); err != nil {
		return fmt.Errorf("relocate bundle: %w", err)
	}

	if err := i.authorize(ctx); err != nil {
		return fmt.Errorf("mark bundle executable: %w", err)
	}

	if !i.skipDesktop {
		if err := i.unpack(ctx); err != nil {
			return fmt.Errorf("extract bundle payload: %w", err)
		}

		if err := i.installIcon(ctx); err != nil {
			return fmt.Errorf("install icon: %w", err)
		}

		i.ensureThemeIndex(ctx)
	}

	if err := i.installWrapper(ctx); err != nil {
		return fmt.Errorf("install wrapper command: %w", err)
	}

	if !i.skipDesktop {
		if err := i.installDesktopEntry(ctx); err != nil {
			return fmt.Errorf("write desktop entry: %w", err)
		}

		i.refreshCaches(ctx)
	}

	if err := i.saveRecord(ctx); err != nil {
		return fmt.Errorf("save installation record: %w", err)
	}

	i.printNextSteps(ctx)

	return nil
}

// terminateRunning kills running instances of the application so the
// relocated bundle is not shadowed by an old mapped binary.
func (i *installer) terminateRunning(ctx context.Context) error {
	if i.cfg.KeepRunning {
		logger.Info(ctx, "Leaving running instances untouched")
		return nil
	}

	names := []string{
		i.info.Slug,
		i.info.TargetFilename(),
		filepath.Base(i.info.Path),
	}

	terminated, err := common.TerminateProcesses(names)
	if err != nil {
		return err
	}

	if terminated > 0 {
		logger.InfoKV(ctx, "Terminated running instances", "count", terminated)
	}

	return nil
}

// saveRecord persists what this run produced so later runs can report,
// replace or remove it.
func (i *installer) saveRecord(ctx context.Context) error {
	rec := &record.Record{
		Slug:             i.info.Slug,
		Name:             i.info.Name,
		Version:          i.info.Version,
		BundlePath:       i.installedPath,
		Checksum:         hex.EncodeToString(i.checksum),
		WrapperPath:      i.wrapperPath,
		WrapperStyle:     i.cfg.WrapperStyle,
		DesktopEntryPath: i.entryPath,
		InstalledAt:      time.Now().UTC(),
	}

	if i.iconPath != "" {
		rec.IconPath = i.iconPath
		rec.IconSize = i.cfg.IconSize
	}

	return i.records.Put(ctx, rec)
}

// refreshCaches asks the desktop environment to pick up the new artifacts,
// bounded like every other external command.
func (i *installer) refreshCaches(ctx context.Context) {
	cmdCtx, cancel := context.WithTimeout(ctx, i.cfg.CommandTimeout)
	defer cancel()

	common.RefreshDesktopCaches(cmdCtx, i.runner,
		i.resolver.ApplicationsDir(), i.resolver.IconThemeDir())
}

// printNextSteps tells the operator how to launch the application.
func (i *installer) printNextSteps(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString(i.info.Name)
	builder.WriteString(" is installed.")
	builder.WriteString("\nRun it from the terminal: ")
	builder.WriteString(filepath.Base(i.wrapperPath))

	if i.entryPath != "" {
		builder.WriteString("\nFind it in the application launcher once the menu refreshes.")
	}

	builder.WriteString("\nRemove it later with: appdock uninstall ")
	builder.WriteString(i.info.Slug)

	if i.depDeclined {
		builder.WriteString("\nReminder: the application may need ")
		builder.WriteString(i.cfg.Dependency.Package)
		builder.WriteString(" installed before it starts.")
	}

	logger.Info(ctx, builder.String())
}

// cleanup removes the transient extraction directory.
func (i *installer) cleanup(ctx context.Context) {
	if i.extractDir == "" {
		return
	}

	if err := os.RemoveAll(i.extractDir); err != nil {
		logger.Warnf(ctx, "Could not clean up extraction directory %q: %v", i.extractDir, err)
	}
}
