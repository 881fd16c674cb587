package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/appdock/appdock/internal/bundle"
	"github.com/appdock/appdock/internal/logger"
	"github.com/appdock/appdock/internal/service/install"
	"github.com/appdock/appdock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the default logging level.
	logLevel string
	// appName overrides the display name derived from the filename.
	appName string
	// installDir overrides the configured bundle directory.
	installDir string
	// skipDesktop leaves out launcher artifacts.
	skipDesktop bool
	// keepRunning leaves running instances of the application untouched.
	keepRunning bool

	// rootCmd represents the base command: installing a bundle.
	rootCmd = &cobra.Command{
		Use:   "appdock [bundle]",
		Short: "Install portable application bundles into the desktop",
		Long: `Integrates a downloaded application bundle (AppImage) into the desktop.

The bundle is moved into the install directory, marked executable and given
an icon, a desktop entry and a stable command on the system path. Without an
argument the newest bundle in the current directory is installed.
Installing elevated artifacts (the command on the system path) asks for
your password once, up front.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var bundlePath string
			if len(args) > 0 {
				bundlePath = args[0]
			}

			// Failures past argument parsing are not usage errors.
			cmd.SilenceUsage = true

			options := &install.Options{
				ConfigPath:  configPath,
				BundlePath:  bundlePath,
				Name:        appName,
				InstallDir:  installDir,
				SkipDesktop: skipDesktop,
				KeepRunning: keepRunning,
			}

			err := install.Run(ctx, options)

			// Finding no bundle to install is the one runtime failure
			// usage output helps with.
			if errors.Is(err, bundle.ErrNoBundle) {
				cmd.SilenceUsage = false
			}

			return err
		},
	}
)

// Execute runs the appdock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default is ~/.config/appdock/appdock.yaml)")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error, fatal)")
	rootCmd.Flags().StringVarP(&appName, "name", "n", "", "override the application name")
	rootCmd.Flags().StringVarP(&installDir, "install-dir", "d", "", "directory to install the bundle into")
	rootCmd.Flags().BoolVar(&skipDesktop, "skip-desktop", false, "skip icon, desktop entry and cache refresh")
	rootCmd.Flags().BoolVar(&keepRunning, "keep-running", false, "do not terminate running instances")
}
