package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/appdock/appdock/internal/bundle"
	"github.com/appdock/appdock/internal/config"
	"github.com/appdock/appdock/internal/logger"
	"github.com/appdock/appdock/internal/paths"
	"github.com/appdock/appdock/internal/repository/record"
)

// Options are inputs accepted by the status entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Slug narrows the report to one installed application.
	Slug string

	// Out receives the report. Leave nil for standard output.
	Out io.Writer
	// HomeDir overrides the home directory artifact locations derive
	// from, for staged installs and tests.
	HomeDir string
}

// reporter holds the state of a single status run.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type reporter struct {
	records record.Repository // Installation record store.
	out     io.Writer         // Report destination.
	slug    string            // Optional single-application filter.
}

// Run renders the report and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "status")

	rep, err := newReporter(opts)
	if err != nil {
		return err
	}

	if err = rep.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Status report failed", "error", err)
		return err
	}

	return nil
}

// newReporter loads configuration and wires the record store.
func newReporter(opts *Options) (*reporter, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	resolver := paths.NewResolver(cfg)
	if opts.HomeDir != "" {
		resolver = paths.NewResolverWithHome(cfg, opts.HomeDir)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &reporter{
		records: record.NewFileRepository(resolver.RecordPath()),
		out:     out,
		slug:    opts.Slug,
	}, nil
}

// Run writes one block per installation, or the one requested.
func (r *reporter) Run(ctx context.Context) error {
	records, err := r.selectRecords(ctx)
	// An application that was never installed is a report, not a failure.
	if errors.Is(err, record.ErrNotFound) {
		fmt.Fprintf(r.out, "%s is not installed.\n", r.slug)
		return nil
	}

	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(r.out, "No applications installed.")
		return nil
	}

	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(r.out)
		}

		if err := r.report(rec); err != nil {
			return err
		}
	}

	return nil
}

// selectRecords returns the requested installation or all of them.
func (r *reporter) selectRecords(ctx context.Context) ([]*record.Record, error) {
	if r.slug == "" {
		return r.records.List(ctx)
	}

	rec, err := r.records.Get(ctx, r.slug)
	if err != nil {
		return nil, fmt.Errorf("look up installation %q: %w", r.slug, err)
	}

	return []*record.Record{rec}, nil
}

// report renders one installation block. The tab writer buffers until
// Flush, so that is where write failures surface.
func (r *reporter) report(rec *record.Record) error {
	fmt.Fprintf(r.out, "%s:\n", rec.Slug)

	writer := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(writer, "  name\t%s\n", rec.Name)

	if rec.Version != "" {
		fmt.Fprintf(writer, "  version\t%s\n", rec.Version)
	}

	fmt.Fprintf(writer, "  bundle\t%s\t%s\n", rec.BundlePath, fileState(rec.BundlePath))
	fmt.Fprintf(writer, "  checksum\t%s\n", checksumState(rec))

	if rec.WrapperPath != "" {
		fmt.Fprintf(writer, "  wrapper\t%s\t%s\n", rec.WrapperPath, fileState(rec.WrapperPath))
	}

	if rec.DesktopEntryPath != "" {
		fmt.Fprintf(writer, "  desktop entry\t%s\t%s\n",
			rec.DesktopEntryPath, fileState(rec.DesktopEntryPath))
	}

	if rec.IconPath != "" {
		fmt.Fprintf(writer, "  icon\t%s\t%s\n", rec.IconPath, fileState(rec.IconPath))
	}

	fmt.Fprintf(writer, "  installed at\t%s\n", rec.InstalledAt.Format("2006-01-02 15:04:05 MST"))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write report for %q: %w", rec.Slug, err)
	}

	return nil
}

// fileState reports whether a recorded artifact is still in place.
func fileState(path string) string {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "missing"
		}

		return "unreadable"
	}

	return "ok"
}

// checksumState compares the bundle on disk with the recorded digest.
func checksumState(rec *record.Record) string {
	if rec.Checksum == "" {
		return "not recorded"
	}

	sum, err := bundle.ChecksumHex(rec.BundlePath)
	if err != nil {
		return "unverifiable"
	}

	if sum != rec.Checksum {
		return "modified"
	}

	return "match"
}
