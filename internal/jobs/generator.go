// Package jobs turns catalog datasets into HTCondor job directories: one wrapper script and one
// job description per batch of files, plus a driver script per dataset that prepares the
// environment and submits every batch.
package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fatjet-analysis/condorctl/internal/batching"
	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/util"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
	"github.com/fatjet-analysis/condorctl/internal/environment"
)

const (
	scriptMode os.FileMode = 0o755
	jdlMode    os.FileMode = 0o644
	dirMode    os.FileMode = 0o755
)

// SampleSource looks up the sample a dataset belongs to.
type SampleSource interface {
	Sample(ctx context.Context, name string) (*catalog.Sample, error)
}

type Generator struct {
	config   *configuration.Config
	samples  SampleSource
	versions environment.VersionSource
	clock    util.Clock
	renderer *Renderer
	out      io.Writer
}

func NewGenerator(
	config *configuration.Config,
	samples SampleSource,
	versions environment.VersionSource,
	clock util.Clock,
	out io.Writer,
) (*Generator, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Generator{
		config:   config,
		samples:  samples,
		versions: versions,
		clock:    clock,
		renderer: renderer,
		out:      out,
	}, nil
}

// Generate plans and writes the job directories of datasets.
func (g *Generator) Generate(ctx context.Context, datasets []*catalog.Dataset) ([]*Plan, error) {
	plans, err := g.Plan(ctx, datasets)
	if err != nil {
		return nil, err
	}
	if err := g.Write(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Plan resolves samples, batches files and names every artifact, without touching the filesystem.
// All datasets share one run timestamp. Two datasets mapping to the same job directory are an error,
// as is any dataset failing catalog.Validate.
func (g *Generator) Plan(ctx context.Context, datasets []*catalog.Dataset) ([]*Plan, error) {
	if err := catalog.Validate(datasets); err != nil {
		return nil, errors.WithMessage(err, "refusing to plan invalid datasets")
	}
	version, err := g.versions.Version()
	if err != nil {
		return nil, err
	}
	pl := &planner{
		config:  g.config,
		layout:  g.Layout(util.RunStamp(g.clock)),
		version: version,
	}

	plans := make([]*Plan, 0, len(datasets))
	dirs := make(map[string]string, len(datasets))
	samples := make(map[string]*catalog.Sample)
	for _, d := range datasets {
		if len(d.Files) == 0 {
			plans = append(plans, &Plan{Dataset: d, Version: version, Dir: pl.layout.JobDir(d)})
			continue
		}

		dir := pl.layout.JobDir(d)
		if other, ok := dirs[dir]; ok {
			return nil, errors.WithStack(&condorerrors.ErrAlreadyExists{
				Type:    "job directory",
				Value:   dir,
				Message: fmt.Sprintf("datasets %s and %s would share it", other, d.Name),
			})
		}
		dirs[dir] = d.Name

		sample, ok := samples[d.Sample]
		if !ok {
			sample, err = g.samples.Sample(ctx, d.Sample)
			if err != nil {
				return nil, errors.WithMessagef(err, "error looking up sample of dataset %s", d.Name)
			}
			samples[d.Sample] = sample
		}

		batches, err := batching.Partition(d.Files, d.Events, g.config.Batching.EventThreshold)
		if err != nil {
			return nil, errors.WithMessagef(err, "error batching dataset %s", d.Name)
		}
		plans = append(plans, pl.plan(d, sample, batches))
	}
	return plans, nil
}

// Write creates the job directory of every non-empty plan and writes its artifacts. Existing
// directories are reused and existing files overwritten.
func (g *Generator) Write(plans []*Plan) error {
	for _, p := range plans {
		fmt.Fprintf(g.out, "Making condor setup for %s ...\n", p.Dataset.Name)
		if p.Empty() {
			log.Warnf("dataset %s has no files; no jobs created", p.Dataset.Name)
			continue
		}
		fmt.Fprintf(g.out, "\tCreating %d jobs ...\n", len(p.Jobs))
		if err := g.write(p); err != nil {
			return err
		}
		fmt.Fprintf(g.out, "\tThe jobs are in %s\n", p.Dir)
	}
	return nil
}

func (g *Generator) write(p *Plan) error {
	if err := os.MkdirAll(p.LogDir, dirMode); err != nil {
		return errors.Wrapf(err, "error creating job directory %s", p.Dir)
	}
	for _, job := range p.Jobs {
		job := job
		err := writeFile(filepath.Join(p.Dir, job.Script), scriptMode, func(w io.Writer) error {
			return g.renderer.JobScript(w, p, job)
		})
		if err != nil {
			return err
		}
		err = writeFile(filepath.Join(p.Dir, job.JDL), jdlMode, func(w io.Writer) error {
			return g.renderer.JDL(w, p, job)
		})
		if err != nil {
			return err
		}
		log.Debugf("wrote job %d of %s: %d files, %d events", job.Index, p.Dataset.Name, len(job.Files), job.Events)
	}
	return writeFile(filepath.Join(p.Dir, DriverScriptName), scriptMode, func(w io.Writer) error {
		return g.renderer.Driver(w, p)
	})
}

// Layout returns the naming policy of a run started at timestamp.
func (g *Generator) Layout(timestamp string) Layout {
	return Layout{
		BaseDir:      g.config.Output.BaseDir,
		Timestamp:    timestamp,
		Suffix:       Suffix(g.config.Analysis.CutPtFilter),
		OutputPrefix: g.config.Analysis.OutputPrefix,
		RemoteRoot:   path.Join(g.config.Storage.BasePath, g.config.Storage.User),
	}
}
