package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fatjet-analysis/condorctl/internal/condorctl"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "condorctl",
		Short: "condorctl generates and submits HTCondor jobs for catalog datasets.",
		Long: `condorctl generates and submits HTCondor jobs for catalog datasets.

Persistent config can be saved in a config file so it doesn't have to be specified every command.

Example structure:
catalog:
  backend: sqlite
  path: ~/condor/catalog.db
batching:
  eventThreshold: 10000
storage:
  user: tote

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.condorctl.yaml is used. Every key can also be set
through the environment, e.g. CONDORCTL_BATCHING_EVENTTHRESHOLD=5000.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPostRun: closeLog,
	}

	configuration.AddCommandlineArgs(cmd)

	cmd.AddCommand(
		generateCmd(condorctl.New()),
		catalogCmd(),
		versionCmd(condorctl.New()),
	)

	return cmd
}

// signalContext returns a context that is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(stopSignal)
		select {
		case <-ctx.Done():
			return
		case <-stopSignal:
			cancel()
		}
	}()
	return ctx, cancel
}

// Print version info and exit.
func versionCmd(app *condorctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			return app.Version()
		},
	}
	return cmd
}
