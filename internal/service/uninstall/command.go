package uninstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appdock/appdock/internal/config"
	"github.com/appdock/appdock/internal/logger"
	"github.com/appdock/appdock/internal/paths"
	"github.com/appdock/appdock/internal/repository/record"
	"github.com/appdock/appdock/internal/service/common"
)

// removalTool deletes root-owned files through the privileged runner.
const removalTool = "rm"

// Options are inputs accepted by the uninstall entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Slug names the installed application to remove. Empty is allowed
	// when exactly one application is installed.
	Slug string
	// Yes skips the confirmation prompt.
	Yes bool

	// Runner executes external commands. Leave nil to run on the host.
	Runner common.Runner
	// Prompter asks the operator questions. Leave nil for the terminal.
	Prompter common.Prompter
	// HomeDir overrides the home directory artifact locations derive
	// from, for staged installs and tests.
	HomeDir string
}

// remover holds the state and capabilities of a single removal.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type remover struct {
	cfg      *config.Config    // Effective configuration.
	resolver *paths.Resolver   // Resolves artifact locations.
	runner   common.Runner     // External command execution.
	prompter common.Prompter   // Operator confirmations.
	records  record.Repository // Installation record store.
	rec      *record.Record    // The installation being removed.
	yes      bool              // Skip the confirmation prompt.
}

// Run executes the removal and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "uninstall")

	rm, err := newRemover(ctx, opts)
	if err != nil {
		return err
	}

	if err = rm.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Uninstall failed", "error", err)
		return err
	}

	return nil
}

// newRemover loads configuration and the installation record for the slug.
func newRemover(ctx context.Context, opts *Options) (*remover, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	resolver := paths.NewResolver(cfg)
	if opts.HomeDir != "" {
		resolver = paths.NewResolverWithHome(cfg, opts.HomeDir)
	}

	records := record.NewFileRepository(resolver.RecordPath())

	rec, err := lookupRecord(ctx, records, opts.Slug)
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

	return &remover{
		cfg:      cfg,
		resolver: resolver,
		runner:   runner,
		prompter: prompter,
		records:  records,
		rec:      rec,
		yes:      opts.Yes,
	}, nil
}

// lookupRecord finds the installation to remove. Without a slug the single
// installed application is chosen; several candidates need an explicit one.
func lookupRecord(ctx context.Context, records record.Repository, slug string) (*record.Record, error) {
	if slug != "" {
		rec, err := records.Get(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("look up installation %q: %w", slug, err)
		}

		return rec, nil
	}

	all, err := records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}

	switch len(all) {
	case 0:
		return nil, record.ErrNotFound
	case 1:
		return all[0], nil
	default:
		slugs := make([]string, 0, len(all))
		for _, rec := range all {
			slugs = append(slugs, rec.Slug)
		}

		return nil, fmt.Errorf("several applications are installed, name one of: %s",
			strings.Join(slugs, ", "))
	}
}

// Run removes every artifact the record names:
// 1) Confirm with the operator.
// 2) Terminate running instances.
// 3) Remove the wrapper command, the desktop entry, the icon, the bundle
// itself and any leftover extraction directory. Artifacts already gone
// are skipped.
// 4) Delete the record and refresh desktop caches.
func (r *remover) Run(ctx context.Context) error {
	if !r.confirm() {
		logger.Info(ctx, "Uninstall cancelled")
		return nil
	}

	if r.rec.WrapperPath != "" {
		if err := r.runner.Prime(ctx); err != nil {
			return fmt.Errorf("prime elevated privileges: %w", err)
		}
	}

	if err := r.terminateRunning(ctx); err != nil {
		return fmt.Errorf("terminate running instances: %w", err)
	}

	if err := r.removeWrapper(ctx); err != nil {
		return fmt.Errorf("remove wrapper command: %w", err)
	}

	userArtifacts := []struct {
		label string
		path  string
	}{
		{"desktop entry", r.rec.DesktopEntryPath},
		{"icon", r.rec.IconPath},
		{"bundle", r.rec.BundlePath},
	}

	for _, artifact := range userArtifacts {
		if err := removeUserArtifact(ctx, artifact.label, artifact.path); err != nil {
			return err
		}
	}

	// An interrupted install can leave its extraction directory behind.
	if err := os.RemoveAll(r.resolver.ExtractRoot(r.rec.Slug)); err != nil {
		return fmt.Errorf("remove extraction directory: %w", err)
	}

	if err := r.records.Delete(ctx, r.rec.Slug); err != nil {
		return fmt.Errorf("delete installation record: %w", err)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.cfg.CommandTimeout)
	defer cancel()

	common.RefreshDesktopCaches(cmdCtx, r.runner,
		r.resolver.ApplicationsDir(), r.resolver.IconThemeDir())

	logger.InfoKV(ctx, "Application removed", "name", r.rec.Name, "slug", r.rec.Slug)

	return nil
}

// confirm asks the operator before anything is deleted.
func (r *remover) confirm() bool {
	if r.yes {
		return true
	}

	subject := r.rec.Name
	if r.rec.Version != "" {
		subject += " " + r.rec.Version
	}

	return r.prompter.Confirm(
		fmt.Sprintf("Remove %s and its desktop integration?", subject))
}

// terminateRunning kills running instances before their bundle disappears.
func (r *remover) terminateRunning(ctx context.Context) error {
	if r.cfg.KeepRunning {
		logger.Info(ctx, "Leaving running instances untouched")
		return nil
	}

	names := []string{r.rec.Slug}
	if r.rec.BundlePath != "" {
		names = append(names, filepath.Base(r.rec.BundlePath))
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

// removeWrapper deletes the command from the system path. The privileged
// removal tolerates an already absent file.
func (r *remover) removeWrapper(ctx context.Context) error {
	if r.rec.WrapperPath == "" {
		return nil
	}

	logger.InfoKV(ctx, "Removing command", "path", r.rec.WrapperPath)

	return r.runner.RunPrivileged(ctx, removalTool, "-f", r.rec.WrapperPath)
}

// removeUserArtifact deletes a file under the user's home. Artifacts that
// are already gone keep the removal idempotent.
func removeUserArtifact(ctx context.Context, label, path string) error {
	if path == "" {
		return nil
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debugf(ctx, "The %s is already absent: %s", label, path)
			return nil
		}

		return fmt.Errorf("remove %s %q: %w", label, path, err)
	}

	logger.InfoKV(ctx, "Removed "+label, "path", path)

	return nil
}
