package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/appdock/appdock/internal/service/status"
)

// statusCmd reports the health of installed applications.
var statusCmd = &cobra.Command{
	Use:   "status [application]",
	Short: "Report installed applications and the state of their artifacts",
	Args:  cobra.MaximumNArgs(1),
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

		options := &status.Options{
			ConfigPath: configPath,
			Slug:       slug,
		}

		return status.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(statusCmd)
}
