package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/appdock/appdock/internal/service/uninstall"
)

var (
	// uninstallYes skips the confirmation prompt.
	uninstallYes bool

	// uninstallCmd removes an installed application.
	uninstallCmd = &cobra.Command{
		Use:   "uninstall [application]",
		Short: "Remove an installed application and its desktop integration",
		Long: `Removes an installed application: its bundle, wrapper command, icon and
desktop entry, as recorded at installation time. Without an argument the
single installed application is removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var slug string
			if len(args) > 0 {
				slug = args[0]
			}

			// Failures past argument parsing are not usage errors.
			cmd.SilenceUsage = true

			options := &uninstall.Options{
				ConfigPath: configPath,
				Slug:       slug,
				Yes:        uninstallYes,
			}

			return uninstall.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(uninstallCmd)
}
