package cmd

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fatjet-analysis/condorctl/internal/common/logging"
	"github.com/fatjet-analysis/condorctl/internal/condorctl"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
)

// logCloser is the rotated log file of the current run, if any.
var logCloser io.Closer

// initParams loads the configuration of the command about to run into app.Params.
// flagKeys maps the command's own flags to the configuration keys they override.
func initParams(cmd *cobra.Command, app *condorctl.App, flagKeys map[string]string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := configuration.LoadCommandlineArgsFromConfigFile(cfgFile); err != nil {
		return err
	}
	if err := configuration.BindFlags(cmd, flagKeys); err != nil {
		return err
	}
	config, err := configuration.Load()
	if err != nil {
		return err
	}
	app.Params.Config = config

	logging.SetVerbose(config.Log.Verbose)
	logCloser, err = logging.AddFileLogging(logging.FileConfig{
		Path:       config.Log.File,
		MaxSizeMb:  config.Log.MaxSizeMb,
		MaxBackups: config.Log.MaxBackups,
		MaxAgeDays: config.Log.MaxAgeDays,
	})
	return err
}

func closeLog(cmd *cobra.Command, args []string) {
	if logCloser == nil {
		return
	}
	if err := logCloser.Close(); err != nil {
		log.Warnf("error closing log file: %s", err)
	}
}
