package condorctl

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fatjet-analysis/condorctl/internal/batching"
	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/slices"
)

// ListCatalog prints the datasets matching query, with the number of jobs the configured
// event threshold would split each into.
func (a *App) ListCatalog(ctx context.Context, query string) error {
	config := a.Params.Config
	c, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	datasets, err := c.FetchEntries(ctx, config.Catalog.Category, query)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Name\tSample\tSubprocess\tGeneration\tFiles\tEvents\tJobs\n")
	for _, d := range datasets {
		batches, err := batching.Partition(d.Files, d.Events, config.Batching.EventThreshold)
		if err != nil {
			return errors.WithMessagef(err, "dataset %s", d.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			d.Name, d.Sample, d.Subprocess, d.Generation, len(d.Files), slices.Sum(d.Events), len(batches))
	}
	return nil
}

// ImportCatalog loads the file catalog at path into the configured SQLite catalog.
func (a *App) ImportCatalog(ctx context.Context, path string) error {
	config := a.Params.Config
	if config.Catalog.Backend != catalog.BackendSQLite {
		return errors.WithStack(&condorerrors.ErrInvalidArgument{
			Name:    "catalog.backend",
			Value:   config.Catalog.Backend,
			Message: "import needs an sqlite catalog",
		})
	}
	document, err := catalog.LoadDocument(path)
	if err != nil {
		return err
	}

	c, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	importer, ok := c.(interface {
		Import(ctx context.Context, document *catalog.Document) error
	})
	if !ok {
		return errors.Errorf("catalog backend %s does not support imports", config.Catalog.Backend)
	}
	if err := importer.Import(ctx, document); err != nil {
		return err
	}
	log.Infof("imported %d samples and %d datasets into %s", len(document.Samples), len(document.Datasets), config.Catalog.Path)
	return nil
}
