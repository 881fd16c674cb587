package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fuseLibraryLine mimics a loader listing that carries the FUSE library.
const fuseLibraryLine = "\tlibfuse.so.2 (libc6,x86-64) => /lib/x86_64-linux-gnu/libfuse.so.2"

// fakeRunner simulates the host: the library probe, the bundle's
// self-extraction and privileged file placement all run against the test
// filesystem.
type fakeRunner struct {
	libraries          string
	missingTools       map[string]bool
	failExtract        bool
	failPackageInstall bool
	calls              []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{libraries: fuseLibraryLine}
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

	return f.simulate("", name, args)
}

func (f *fakeRunner) RunIn(_ context.Context, dir, name string, args ...string) error {
	f.record("run", name, args)

	return f.simulate(dir, name, args)
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.record("output", name, args)

	if name == "ldconfig" {
		return f.libraries, nil
	}

	return "", nil
}

func (f *fakeRunner) RunPrivileged(_ context.Context, name string, args ...string) error {
	f.record("priv", name, args)

	return f.simulate("", name, args)
}

func (f *fakeRunner) Prime(_ context.Context) error {
	f.calls = append(f.calls, "prime")

	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missingTools[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}

	return "/usr/bin/" + name, nil
}

// simulate performs the filesystem effect of known commands.
func (f *fakeRunner) simulate(dir, name string, args []string) error {
	switch {
	case name == packageInstallTool:
		if f.failPackageInstall {
			return fmt.Errorf("%s: exit status 100", name)
		}

		return nil
	case len(args) == 1 && args[0] == extractFlag:
		if f.failExtract {
			return fmt.Errorf("%s: exit status 1", name)
		}

		return extractFakePayload(dir)
	case name == installTool && len(args) == 4 && args[0] == "-m":
		data, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}

		return os.WriteFile(args[3], data, 0o755)
	case name == symlinkTool && len(args) == 3 && args[0] == "-sfn":
		_ = os.Remove(args[2])

		return os.Symlink(args[1], args[2])
	}

	return nil
}

// extractFakePayload produces the tree a real self-extraction would.
func extractFakePayload(dir string) error {
	iconDir := filepath.Join(dir, "squashfs-root", "usr", "share", "icons", "hicolor", "256x256", "apps")
	if err := os.MkdirAll(iconDir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(iconDir, "app.png"), []byte("png-bytes"), 0o644)
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

// testEnv is the staged filesystem of one installation test.
type testEnv struct {
	root       string
	home       string
	wrapperDir string
	bundlePath string
}

// newTestEnv stages a downloaded bundle, a home tree, a writable wrapper
// directory and a system data directory carrying a theme descriptor.
func newTestEnv(t *testing.T, filename, payload string) (*testEnv, *Options, *fakeRunner, *fakePrompter) {
	t.Helper()

	root := t.TempDir()

	env := &testEnv{
		root:       root,
		home:       filepath.Join(root, "home"),
		wrapperDir: filepath.Join(root, "bin"),
		bundlePath: filepath.Join(root, "downloads", filename),
	}

	for _, dir := range []string{env.home, env.wrapperDir, filepath.Dir(env.bundlePath)} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(env.bundlePath, []byte(payload), 0o644))

	configPath := filepath.Join(root, "appdock.yaml")
	require.NoError(t, os.WriteFile(configPath,
		[]byte("wrapper_dir: "+env.wrapperDir+"\n"), 0o600))

	dataDir := filepath.Join(root, "usr-share")
	themeIndex := filepath.Join(dataDir, "icons", "hicolor", "index.theme")
	require.NoError(t, os.MkdirAll(filepath.Dir(themeIndex), 0o755))
	require.NoError(t, os.WriteFile(themeIndex, []byte("[Icon Theme]\nName=Hicolor\n"), 0o644))

	runner := newFakeRunner()
	prompter := &fakePrompter{}

	opts := &Options{
		ConfigPath:     configPath,
		BundlePath:     env.bundlePath,
		HomeDir:        env.home,
		SystemDataDirs: []string{dataDir},
		Runner:         runner,
		Prompter:       prompter,
	}

	return env, opts, runner, prompter
}

func (e *testEnv) installedBundle(slug string) string {
	return filepath.Join(e.home, "Applications", slug+".AppImage")
}

func (e *testEnv) wrapperPath(slug string) string {
	return filepath.Join(e.wrapperDir, slug)
}

func (e *testEnv) desktopEntryPath(slug string) string {
	return filepath.Join(e.home, ".local", "share", "applications", slug+".desktop")
}

func (e *testEnv) iconPath(slug string) string {
	return filepath.Join(e.home, ".local", "share", "icons", "hicolor", "256x256", "apps", slug+".png")
}

func (e *testEnv) recordPath() string {
	return filepath.Join(e.home, ".local", "state", "appdock", "installed.yaml")
}
