package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_PutGetRoundtrip verifies persistence of a full record.
func TestFileRepository_PutGetRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "installed.yaml")
	repo := NewFileRepository(path)

	installedAt := time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)
	rec := &Record{
		Slug:             "polaris",
		Name:             "Polaris",
		Version:          "1.4.2",
		BundlePath:       "/home/user/Applications/polaris.AppImage",
		Checksum:         "deadbeef",
		WrapperPath:      "/usr/local/bin/polaris",
		WrapperStyle:     "script",
		DesktopEntryPath: "/home/user/.local/share/applications/polaris.desktop",
		IconPath:         "/home/user/.local/share/icons/hicolor/256x256/apps/polaris.png",
		IconSize:         256,
		InstalledAt:      installedAt,
	}

	require.NoError(t, repo.Put(ctx, rec))

	loaded, err := repo.Get(ctx, "polaris")
	require.NoError(t, err)
	require.Equal(t, rec, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestFileRepository_GetMissing verifies the sentinel for unknown slugs.
func TestFileRepository_GetMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "installed.yaml"))

	_, err := repo.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_Put_RequiresSlug verifies record validation.
func TestFileRepository_Put_RequiresSlug(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "installed.yaml"))

	require.Error(t, repo.Put(context.Background(), nil))
	require.Error(t, repo.Put(context.Background(), &Record{Name: "Polaris"}))
}

// TestFileRepository_Delete verifies removal and its sentinel.
func TestFileRepository_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "installed.yaml"))

	require.NoError(t, repo.Put(ctx, &Record{Slug: "polaris", Name: "Polaris"}))
	require.NoError(t, repo.Delete(ctx, "polaris"))

	_, err := repo.Get(ctx, "polaris")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, "polaris"), ErrNotFound)
}

// TestFileRepository_List verifies slug ordering and cross-instance reads.
func TestFileRepository_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "installed.yaml")
	repo := NewFileRepository(path)

	for _, slug := range []string{"zeal", "polaris", "arduino"} {
		require.NoError(t, repo.Put(ctx, &Record{Slug: slug, Name: slug}))
	}

	// A fresh instance must see the same store.
	records, err := NewFileRepository(path).List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "arduino", records[0].Slug)
	require.Equal(t, "polaris", records[1].Slug)
	require.Equal(t, "zeal", records[2].Slug)
}

// TestFileRepository_List_EmptyStore verifies a missing file reads as empty.
func TestFileRepository_List_EmptyStore(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "installed.yaml"))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}
