package condorctl

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/slices"
	"github.com/fatjet-analysis/condorctl/internal/jobs"
	"github.com/fatjet-analysis/condorctl/internal/submit"
)

type GenerateArgs struct {
	// Catalog query selecting the datasets, see catalog.ParseQuery
	Query string
	// Print what would be generated without writing anything
	DryRun bool
	// Run the driver stages of every written dataset
	Submit bool
}

// Generate creates the job directories of every dataset matching args.Query and optionally submits them.
func (a *App) Generate(ctx context.Context, args GenerateArgs) error {
	config := a.Params.Config
	if args.DryRun && args.Submit {
		return errors.WithStack(&condorerrors.ErrInvalidArgument{
			Name:    "submit",
			Value:   "true",
			Message: "--dryRun and --submit are mutually exclusive",
		})
	}

	c, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warnf("error closing catalog: %s", err)
		}
	}()

	datasets, err := c.FetchEntries(ctx, config.Catalog.Category, args.Query)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		log.Warnf("no %s datasets match %q", config.Catalog.Category, args.Query)
		return nil
	}
	log.Debugf("generating jobs for %v", slices.Map(datasets, func(d *catalog.Dataset) string { return d.Name }))

	generator, err := jobs.NewGenerator(config, c, a.versionSource(), a.Clock, a.Out)
	if err != nil {
		return err
	}
	if args.DryRun {
		plans, err := generator.Plan(ctx, datasets)
		if err != nil {
			return err
		}
		a.describe(plans)
		return nil
	}

	plans, err := generator.Generate(ctx, datasets)
	if err != nil {
		return err
	}
	if !args.Submit {
		return nil
	}
	runner := submit.NewRunner(a.Executor)
	for _, p := range plans {
		if p.Empty() {
			continue
		}
		clusters, err := runner.Submit(ctx, p)
		if err != nil {
			return errors.WithMessagef(err, "error submitting %s", p.Dataset.Name)
		}
		fmt.Fprintf(a.Out, "Submitted %s: %d jobs in %d clusters\n", p.Dataset.Name, len(p.Jobs), len(clusters))
	}
	return nil
}

// describe prints the plans grouped by sample.
func (a *App) describe(plans []*jobs.Plan) {
	bySample := slices.GroupByFunc(plans, func(p *jobs.Plan) string { return p.Dataset.Sample })
	samples := make([]string, 0, len(bySample))
	for sample := range bySample {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Sample\tDataset\tJobs\tEvents\tDirectory\tRemote path\n")
	for _, sample := range samples {
		for _, p := range bySample[sample] {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", sample, p.Dataset.Name, len(p.Jobs), p.Events(), p.Dir, p.RemotePath)
		}
	}
}
