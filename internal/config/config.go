package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Dependency describes the runtime library the installed bundle needs to run,
// and the package that provides it when it has to be installed.
type Dependency struct {
	// Library is the shared object name probed via ldconfig.
	Library string `yaml:"library"`
	// Package is the distribution package offered to the operator when the
	// library is absent.
	Package string `yaml:"package"`
}

// Config holds the knobs of the desktop integration procedure. Every field
// has a built-in default so the tool works without a configuration file;
// the file (and CLI flags) only override.
type Config struct {
	// AppName overrides the display name derived from the bundle filename.
	AppName string `yaml:"app_name"`
	// BundlePattern is the glob used to discover bundles and to purge
	// superseded versions from the install directory.
	BundlePattern string `yaml:"bundle_pattern"`
	// InstallDir is where bundles are relocated to. Empty means the
	// default Applications directory under the user's home.
	InstallDir string `yaml:"install_dir"`
	// IconSize is the hicolor size bucket the icon is installed into.
	IconSize int `yaml:"icon_size"`
	// Categories is the Categories value of the generated desktop entry.
	Categories string `yaml:"categories"`
	// Comment overrides the Comment value of the generated desktop entry.
	Comment string `yaml:"comment"`
	// Terminal is the Terminal value of the generated desktop entry.
	Terminal bool `yaml:"terminal"`
	// WrapperDir is the system directory receiving the stable command.
	WrapperDir string `yaml:"wrapper_dir"`
	// WrapperStyle selects the stable command form: a generated shell
	// script ("script") or a symbolic link ("symlink").
	WrapperStyle string `yaml:"wrapper_style"`
	// WrapperArgs are the fixed arguments the wrapper script passes to the
	// bundle before any operator-supplied ones.
	WrapperArgs []string `yaml:"wrapper_args"`
	// KeepRunning disables terminating running instances of the
	// application before the bundle is replaced.
	KeepRunning bool `yaml:"keep_running"`
	// CommandTimeout bounds every external command the procedure runs.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// Dependency is the runtime support library checked before installing.
	Dependency Dependency `yaml:"dependency"`
}

const (
	// DefaultConfigFilename is the name of the configuration file looked up
	// under the user configuration directory.
	DefaultConfigFilename = "appdock.yaml"

	// DefaultBundlePattern matches AppImage bundles.
	DefaultBundlePattern = "*.AppImage"

	// DefaultIconSize is the hicolor bucket used when none is configured.
	DefaultIconSize = 256

	// DefaultCategories places the entry in the development section of the menu.
	DefaultCategories = "Development;"

	// DefaultWrapperDir is on every distribution's default PATH and is
	// reserved for locally installed software.
	DefaultWrapperDir = "/usr/local/bin"

	// WrapperStyleScript generates a small shell script invoking the bundle.
	WrapperStyleScript = "script"

	// WrapperStyleSymlink links the stable command directly to the bundle.
	WrapperStyleSymlink = "symlink"

	// DefaultCommandTimeout bounds external commands (extraction, package
	// installation, cache refresh).
	DefaultCommandTimeout = 2 * time.Minute

	// DefaultFilePermissions is the file mode for documents this tool writes
	// under the user's home.
	DefaultFilePermissions = 0o600

	// ExecutablePermissions is the file mode for installed bundles and
	// wrapper commands.
	ExecutablePermissions os.FileMode = 0o755

	// configDirName is the subdirectory of the XDG config home holding the file.
	configDirName = "appdock"
)

// DefaultDependency is the FUSE 2 runtime AppImages mount themselves with.
func DefaultDependency() Dependency {
	return Dependency{
		Library: "libfuse.so.2",
		Package: "libfuse2",
	}
}

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidPattern is returned when the bundle glob does not compile.
	errInvalidPattern = errors.New("invalid bundle pattern")
	// errInvalidIconSize is returned for non-positive icon sizes.
	errInvalidIconSize = errors.New("icon size must be positive")
	// errInvalidWrapperStyle is returned for unknown wrapper styles.
	errInvalidWrapperStyle = errors.New(`wrapper style must be "script" or "symlink"`)
)

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, configDirName, DefaultConfigFilename)
}

// Load reads configuration from the provided path and validates it.
// An empty path means the default location; if no file exists there the
// built-in defaults are returned. An explicitly provided path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg := new(Config)
			if err := Validate(cfg); err != nil {
				return nil, err
			}

			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path, creating parent
// directories as needed. An empty path means the default location.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration and fills zero values with the
// built-in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BundlePattern == "" {
		cfg.BundlePattern = DefaultBundlePattern
	}

	if _, err := filepath.Match(cfg.BundlePattern, "probe"); err != nil {
		return fmt.Errorf("%w: %q", errInvalidPattern, cfg.BundlePattern)
	}

	switch {
	case cfg.IconSize == 0:
		cfg.IconSize = DefaultIconSize
	case cfg.IconSize < 0:
		return fmt.Errorf("%w: %d", errInvalidIconSize, cfg.IconSize)
	}

	if cfg.Categories == "" {
		cfg.Categories = DefaultCategories
	}

	// The desktop entry format requires a terminating semicolon on lists.
	if !strings.HasSuffix(cfg.Categories, ";") {
		cfg.Categories += ";"
	}

	if cfg.WrapperDir == "" {
		cfg.WrapperDir = DefaultWrapperDir
	}

	switch cfg.WrapperStyle {
	case "":
		cfg.WrapperStyle = WrapperStyleScript
	case WrapperStyleScript, WrapperStyleSymlink:
	default:
		return fmt.Errorf("%w: %q", errInvalidWrapperStyle, cfg.WrapperStyle)
	}

	// A nil slice means "not configured"; an explicit empty list in the
	// file stays empty.
	if cfg.WrapperArgs == nil {
		cfg.WrapperArgs = []string{"--no-sandbox"}
	}

	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}

	if cfg.Dependency.Library == "" {
		cfg.Dependency.Library = DefaultDependency().Library
	}

	if cfg.Dependency.Package == "" {
		cfg.Dependency.Package = DefaultDependency().Package
	}

	return nil
}
