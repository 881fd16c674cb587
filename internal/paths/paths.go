package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/appdock/appdock/internal/config"
)

const (
	// toolDirName is the subdirectory this tool claims under the XDG
	// state and cache trees.
	toolDirName = "appdock"

	// applicationsDirName is the desktop entry directory under a data root.
	applicationsDirName = "applications"

	// themeName is the fallback icon theme every desktop environment scans.
	themeName = "hicolor"

	// themeIndexName is the descriptor file icon lookup requires.
	themeIndexName = "index.theme"

	// recordFilename stores installation records.
	recordFilename = "installed.yaml"

	// defaultInstallDirName is the conventional bundle directory under $HOME.
	defaultInstallDirName = "Applications"
)

// Resolver computes every filesystem location the procedure touches from the
// user's home, the XDG base directories and the configuration. Steps never
// read the environment themselves; they ask the resolver.
type Resolver struct {
	cfg       *config.Config
	homeDir   string
	dataHome  string
	stateHome string
	cacheHome string
	dataDirs  []string
}

// NewResolver creates a Resolver from the current user's XDG environment.
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		cfg:       cfg,
		homeDir:   xdg.Home,
		dataHome:  xdg.DataHome,
		stateHome: xdg.StateHome,
		cacheHome: xdg.CacheHome,
		dataDirs:  xdg.DataDirs,
	}
}

// NewResolverWithHome creates a Resolver rooted at an explicit home directory,
// deriving the XDG trees from it. System data directories default to none
// unless provided. Useful for tests.
func NewResolverWithHome(cfg *config.Config, homeDir string, dataDirs ...string) *Resolver {
	return &Resolver{
		cfg:       cfg,
		homeDir:   homeDir,
		dataHome:  filepath.Join(homeDir, ".local", "share"),
		stateHome: filepath.Join(homeDir, ".local", "state"),
		cacheHome: filepath.Join(homeDir, ".cache"),
		dataDirs:  dataDirs,
	}
}

// HomeDir returns the resolved home directory.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// InstallDir returns the directory bundles are relocated into.
// A configured value wins, with a leading "~" expanded; otherwise the
// conventional Applications directory under home is used.
func (r *Resolver) InstallDir() string {
	if dir := r.cfg.InstallDir; dir != "" {
		return r.expandHome(dir)
	}

	return filepath.Join(r.homeDir, defaultInstallDirName)
}

// ApplicationsDir returns the user desktop entry directory.
func (r *Resolver) ApplicationsDir() string {
	return filepath.Join(r.dataHome, applicationsDirName)
}

// DesktopEntryPath returns the launcher descriptor location for a slug.
func (r *Resolver) DesktopEntryPath(slug string) string {
	return filepath.Join(r.ApplicationsDir(), slug+".desktop")
}

// IconThemeDir returns the user hicolor theme root.
func (r *Resolver) IconThemeDir() string {
	return filepath.Join(r.dataHome, "icons", themeName)
}

// IconSizeDir returns the application icon directory of a size bucket,
// e.g. .../hicolor/256x256/apps.
func (r *Resolver) IconSizeDir(size int) string {
	return filepath.Join(r.IconThemeDir(), fmt.Sprintf("%dx%d", size, size), "apps")
}

// IconPath returns the installed icon location for a slug and size bucket.
func (r *Resolver) IconPath(slug string, size int) string {
	return filepath.Join(r.IconSizeDir(size), slug+".png")
}

// ThemeIndexPath returns the user theme descriptor location.
func (r *Resolver) ThemeIndexPath() string {
	return filepath.Join(r.IconThemeDir(), themeIndexName)
}

// SystemThemeIndexCandidates returns the system-wide theme descriptor
// locations in XDG precedence order.
func (r *Resolver) SystemThemeIndexCandidates() []string {
	candidates := make([]string, 0, len(r.dataDirs))
	for _, dir := range r.dataDirs {
		candidates = append(candidates, filepath.Join(dir, "icons", themeName, themeIndexName))
	}

	return candidates
}

// WrapperPath returns the stable command location for a slug.
func (r *Resolver) WrapperPath(slug string) string {
	return filepath.Join(r.cfg.WrapperDir, slug)
}

// ExtractRoot returns the transient extraction directory for a slug.
// It lives under the cache tree and is recreated on every run.
func (r *Resolver) ExtractRoot(slug string) string {
	return filepath.Join(r.cacheHome, toolDirName, "extract", slug)
}

// RecordPath returns the installation record store location.
func (r *Resolver) RecordPath() string {
	return filepath.Join(r.stateHome, toolDirName, recordFilename)
}

// expandHome rewrites a leading "~" to the resolved home directory.
func (r *Resolver) expandHome(path string) string {
	if path == "~" {
		return r.homeDir
	}

	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(r.homeDir, path[2:])
	}

	return path
}
