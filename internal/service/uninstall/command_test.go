package uninstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/appdock/appdock/internal/repository/record"
)

// fakeRunner simulates privileged removal against the test filesystem.
type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) record(kind, name string, args []string) {
	call := kind + " " + name
	if len(args) > 0 {
		call += " " + strings.Join(args, " ")
	}

	f.calls = append(f.calls, call)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.record("run", name, args)

	return nil
}

func (f *fakeRunner) RunIn(_ context.Context, _, name string, args ...string) error {
	f.record("run", name, args)

	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.record("output", name, args)

	return "", nil
}

func (f *fakeRunner) RunPrivileged(_ context.Context, name string, args ...string) error {
	f.record("priv", name, args)

	if name == removalTool && len(args) == 2 && args[0] == "-f" {
		if err := os.Remove(args[1]); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

func (f *fakeRunner) Prime(_ context.Context) error {
	f.calls = append(f.calls, "prime")

	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) called(prefix string) bool {
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}

	return false
}

// fakePrompter answers every question the same way and remembers them.
type fakePrompter struct {
	answer    bool
	questions []string
}

func (p *fakePrompter) Confirm(question string) bool {
	p.questions = append(p.questions, question)

	return p.answer
}

// stageInstallation lays out every artifact of an installed application
// and its record under a fresh home.
func stageInstallation(t *testing.T) (home string, rec *record.Record) {
	t.Helper()

	root := t.TempDir()
	home = filepath.Join(root, "home")

	rec = &record.Record{
		Slug:             "polaris",
		Name:             "Polaris",
		Version:          "1.4.2",
		BundlePath:       filepath.Join(home, "Applications", "polaris.AppImage"),
		Checksum:         "cafe",
		WrapperPath:      filepath.Join(root, "bin", "polaris"),
		WrapperStyle:     "script",
		DesktopEntryPath: filepath.Join(home, ".local", "share", "applications", "polaris.desktop"),
		IconPath:         filepath.Join(home, ".local", "share", "icons", "hicolor", "256x256", "apps", "polaris.png"),
		IconSize:         256,
		InstalledAt:      time.Now().UTC(),
	}

	for _, path := range []string{rec.BundlePath, rec.WrapperPath, rec.DesktopEntryPath, rec.IconPath} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("artifact"), 0o755))
	}

	recordPath := filepath.Join(home, ".local", "state", "appdock", "installed.yaml")
	require.NoError(t, record.NewFileRepository(recordPath).Put(context.Background(), rec))

	return home, rec
}

// TestRun_RemovesEverything verifies a full removal driven by the record.
func TestRun_RemovesEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, rec := stageInstallation(t)
	runner := &fakeRunner{}

	err := Run(ctx, &Options{
		Slug:    "polaris",
		Yes:     true,
		Runner:  runner,
		HomeDir: home,
	})
	require.NoError(t, err)

	for _, path := range []string{rec.BundlePath, rec.WrapperPath, rec.DesktopEntryPath, rec.IconPath} {
		_, statErr := os.Stat(path)
		require.True(t, os.IsNotExist(statErr), "artifact should be removed: %s", path)
	}

	recordPath := filepath.Join(home, ".local", "state", "appdock", "installed.yaml")
	_, err = record.NewFileRepository(recordPath).Get(ctx, "polaris")
	require.ErrorIs(t, err, record.ErrNotFound)

	require.Equal(t, "prime", runner.calls[0])
	require.True(t, runner.called("priv rm -f "+rec.WrapperPath))
	require.True(t, runner.called("priv update-desktop-database"))
}

// TestRun_ConfirmDeclined verifies that declining leaves everything alone.
func TestRun_ConfirmDeclined(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, rec := stageInstallation(t)
	runner := &fakeRunner{}
	prompter := &fakePrompter{answer: false}

	err := Run(ctx, &Options{
		Slug:     "polaris",
		Runner:   runner,
		Prompter: prompter,
		HomeDir:  home,
	})
	require.NoError(t, err)

	require.Len(t, prompter.questions, 1)
	require.Equal(t, "Remove Polaris 1.4.2 and its desktop integration?", prompter.questions[0])

	for _, path := range []string{rec.BundlePath, rec.WrapperPath, rec.DesktopEntryPath, rec.IconPath} {
		_, statErr := os.Stat(path)
		require.NoError(t, statErr, "artifact should survive a decline: %s", path)
	}

	require.Empty(t, runner.calls)
}

// TestRun_DefaultsToOnlyInstallation verifies that no slug is needed while
// exactly one application is installed.
func TestRun_DefaultsToOnlyInstallation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, rec := stageInstallation(t)

	err := Run(ctx, &Options{
		Yes:     true,
		Runner:  &fakeRunner{},
		HomeDir: home,
	})
	require.NoError(t, err)

	_, err = os.Stat(rec.BundlePath)
	require.True(t, os.IsNotExist(err))
}

// TestRun_AmbiguousWithoutSlug verifies the error naming every candidate.
func TestRun_AmbiguousWithoutSlug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, _ := stageInstallation(t)

	recordPath := filepath.Join(home, ".local", "state", "appdock", "installed.yaml")
	second := &record.Record{
		Slug:        "zeal",
		Name:        "Zeal",
		BundlePath:  filepath.Join(home, "Applications", "zeal.AppImage"),
		InstalledAt: time.Now().UTC(),
	}
	require.NoError(t, record.NewFileRepository(recordPath).Put(ctx, second))

	err := Run(ctx, &Options{
		Yes:     true,
		Runner:  &fakeRunner{},
		HomeDir: home,
	})
	require.ErrorContains(t, err, "polaris, zeal")
}

// TestRun_UnknownSlug verifies the error for applications never installed.
func TestRun_UnknownSlug(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		Slug:    "absent",
		Yes:     true,
		Runner:  &fakeRunner{},
		HomeDir: t.TempDir(),
	})
	require.ErrorIs(t, err, record.ErrNotFound)
}

// TestRun_ToleratesMissingArtifacts verifies idempotent removal after a
// partial earlier run.
func TestRun_ToleratesMissingArtifacts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, rec := stageInstallation(t)

	// Half the artifacts are already gone.
	require.NoError(t, os.Remove(rec.DesktopEntryPath))
	require.NoError(t, os.Remove(rec.IconPath))

	err := Run(ctx, &Options{
		Slug:    "polaris",
		Yes:     true,
		Runner:  &fakeRunner{},
		HomeDir: home,
	})
	require.NoError(t, err)

	_, err = os.Stat(rec.BundlePath)
	require.True(t, os.IsNotExist(err))

	recordPath := filepath.Join(home, ".local", "state", "appdock", "installed.yaml")
	_, err = record.NewFileRepository(recordPath).Get(ctx, "polaris")
	require.ErrorIs(t, err, record.ErrNotFound)
}

// TestRun_RemovesLeftoverExtraction verifies that an extraction directory
// left behind by an interrupted install is cleaned up.
func TestRun_RemovesLeftoverExtraction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, _ := stageInstallation(t)

	extractRoot := filepath.Join(home, ".cache", "appdock", "extract", "polaris")
	require.NoError(t, os.MkdirAll(filepath.Join(extractRoot, "squashfs-root"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(extractRoot, "squashfs-root", "AppRun"), []byte("run"), 0o755))

	err := Run(ctx, &Options{
		Slug:    "polaris",
		Yes:     true,
		Runner:  &fakeRunner{},
		HomeDir: home,
	})
	require.NoError(t, err)

	_, err = os.Stat(extractRoot)
	require.True(t, os.IsNotExist(err))
}

// TestRun_RecordWithoutWrapper verifies that records lacking a wrapper
// never prime privileges.
func TestRun_RecordWithoutWrapper(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home, rec := stageInstallation(t)

	rec.WrapperPath = ""
	recordPath := filepath.Join(home, ".local", "state", "appdock", "installed.yaml")
	require.NoError(t, record.NewFileRepository(recordPath).Put(ctx, rec))

	runner := &fakeRunner{}

	err := Run(ctx, &Options{
		Slug:    "polaris",
		Yes:     true,
		Runner:  runner,
		HomeDir: home,
	})
	require.NoError(t, err)

	require.False(t, runner.called("prime"))
	require.False(t, runner.called(fmt.Sprintf("priv %s", removalTool)))
}
