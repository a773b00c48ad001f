package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/fatjet-analysis/condorctl/cmd/condorctl/cmd"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/logging"
)

// Config is handled by cmd/params.go
func main() {
	logging.ConfigureCommandLineLogging()
	err := cmd.RootCmd().Execute()
	if err != nil {
		logging.ReportError(log.StandardLogger(), err)
		os.Exit(condorerrors.ExitCodeFromError(err))
	}
}
