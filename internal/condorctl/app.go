// Package condorctl implements the condorctl commands. The cobra layer in cmd/condorctl parses
// flags and configuration into Params and calls one method of App per command.
package condorctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/util"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/build"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
	"github.com/fatjet-analysis/condorctl/internal/environment"
	"github.com/fatjet-analysis/condorctl/internal/submit"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Source of the run timestamp. Tests use a util.FixedClock.
	Clock util.Clock
	// Runs external commands when submitting.
	Executor submit.Executor
	// Opens the dataset catalog.
	OpenCatalog func(ctx context.Context, backend string, path string) (catalog.Catalog, error)
}

// Params holds the merged configuration of a command run.
type Params struct {
	Config *configuration.Config
}

// New instantiates an App writing to standard out and running real commands.
func New() *App {
	return &App{
		Params:      &Params{Config: &configuration.Config{}},
		Out:         os.Stdout,
		Clock:       util.SystemClock{},
		Executor:    &submit.ExecExecutor{},
		OpenCatalog: catalog.Open,
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

func (a *App) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	c := a.Params.Config.Catalog
	return a.OpenCatalog(ctx, c.Backend, c.Path)
}

// versionSource prefers an explicitly configured version over the environment variable.
func (a *App) versionSource() environment.VersionSource {
	env := a.Params.Config.Environment
	if env.Version != "" {
		return environment.Static(env.Version)
	}
	return environment.NewEnvVersion(env.VersionVariable)
}
