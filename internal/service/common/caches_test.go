package common

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptRunner records commands and fails the ones it is scripted to fail.
type scriptRunner struct {
	missingTools     map[string]bool
	failPrivileged   bool
	failUnprivileged bool
	calls            []string
}

func (r *scriptRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, "run "+commandLine(name, args))

	if r.failUnprivileged {
		return fmt.Errorf("%s: exit status 1", name)
	}

	return nil
}

func (r *scriptRunner) RunIn(ctx context.Context, _, name string, args ...string) error {
	return r.Run(ctx, name, args...)
}

func (r *scriptRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, "output "+commandLine(name, args))

	return "", nil
}

func (r *scriptRunner) RunPrivileged(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, "priv "+commandLine(name, args))

	if r.failPrivileged {
		return fmt.Errorf("sudo %s: exit status 1", name)
	}

	return nil
}

func (r *scriptRunner) Prime(_ context.Context) error {
	r.calls = append(r.calls, "prime")

	return nil
}

func (r *scriptRunner) LookPath(name string) (string, error) {
	if r.missingTools[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}

	return "/usr/bin/" + name, nil
}

// TestRefreshDesktopCaches_SystemScope verifies the privileged refresh path.
func TestRefreshDesktopCaches_SystemScope(t *testing.T) {
	t.Parallel()

	runner := &scriptRunner{}

	RefreshDesktopCaches(context.Background(), runner, "/home/u/.local/share/applications",
		"/home/u/.local/share/icons/hicolor")

	require.Equal(t, []string{
		"priv update-desktop-database",
		"priv gtk-update-icon-cache -f -t /usr/share/icons/hicolor",
	}, runner.calls)
}

// TestRefreshDesktopCaches_UserFallback verifies the fallback when
// elevation fails.
func TestRefreshDesktopCaches_UserFallback(t *testing.T) {
	t.Parallel()

	runner := &scriptRunner{failPrivileged: true}

	RefreshDesktopCaches(context.Background(), runner, "/home/u/.local/share/applications",
		"/home/u/.local/share/icons/hicolor")

	require.Equal(t, []string{
		"priv update-desktop-database",
		"run update-desktop-database /home/u/.local/share/applications",
		"priv gtk-update-icon-cache -f -t /usr/share/icons/hicolor",
		"run gtk-update-icon-cache -f -t /home/u/.local/share/icons/hicolor",
	}, runner.calls)
}

// TestRefreshDesktopCaches_BothScopesFail verifies that a failed fallback
// is tolerated: cache refresh is best-effort.
func TestRefreshDesktopCaches_BothScopesFail(t *testing.T) {
	t.Parallel()

	runner := &scriptRunner{failPrivileged: true, failUnprivileged: true}

	RefreshDesktopCaches(context.Background(), runner, "/apps", "/icons")

	require.Equal(t, []string{
		"priv update-desktop-database",
		"run update-desktop-database /apps",
		"priv gtk-update-icon-cache -f -t /usr/share/icons/hicolor",
		"run gtk-update-icon-cache -f -t /icons",
	}, runner.calls)
}

// TestRefreshDesktopCaches_MissingTools verifies that absent tools are
// skipped entirely.
func TestRefreshDesktopCaches_MissingTools(t *testing.T) {
	t.Parallel()

	runner := &scriptRunner{missingTools: map[string]bool{
		"update-desktop-database": true,
		"gtk-update-icon-cache":   true,
	}}

	RefreshDesktopCaches(context.Background(), runner, "/apps", "/icons")

	for _, call := range runner.calls {
		require.False(t, strings.HasPrefix(call, "priv"), "no refresh should run: %v", runner.calls)
		require.False(t, strings.HasPrefix(call, "run"), "no refresh should run: %v", runner.calls)
	}
}
