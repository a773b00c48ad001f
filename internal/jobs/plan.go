package jobs

import (
	"path"
	"strconv"
	"strings"

	"github.com/fatjet-analysis/condorctl/internal/batching"
	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
)

// Job is one batch of a dataset together with the names of its artifacts.
type Job struct {
	batching.Batch
	Script     string
	JDL        string
	OutputFile string
	// Analysis, copy and remove steps run by the wrapper script
	Chain Chain
}

// Plan is everything known about the artifacts of one dataset before they are written.
type Plan struct {
	Dataset    *catalog.Dataset
	Sample     *catalog.Sample
	Version    string
	Dir        string
	LogDir     string
	RemotePath string
	Jobs       []*Job
	Stages     []Stage

	// Environment setup copied from the analysis configuration
	WorkDir      string
	SiteSetup    string
	RuntimeSetup string
	NotifyDomain string
}

// Empty reports whether the dataset has no files, in which case nothing is written for it.
func (p *Plan) Empty() bool {
	return len(p.Jobs) == 0
}

// Archive is the name of the tarball of the environment area that every job unpacks.
func (p *Plan) Archive() string {
	return p.Version + ".tar.gz"
}

// Events is the total number of events over all jobs.
func (p *Plan) Events() int {
	total := 0
	for _, job := range p.Jobs {
		total += job.Events
	}
	return total
}

type planner struct {
	config  *configuration.Config
	layout  Layout
	version string
}

func (pl *planner) plan(d *catalog.Dataset, sample *catalog.Sample, batches []batching.Batch) *Plan {
	p := &Plan{
		Dataset:      d,
		Sample:       sample,
		Version:      pl.version,
		Dir:          pl.layout.JobDir(d),
		LogDir:       pl.layout.LogDir(d),
		RemotePath:   pl.layout.RemotePath(sample.Name, d),
		Jobs:         make([]*Job, 0, len(batches)),
		WorkDir:      path.Join(pl.version, pl.config.Analysis.WorkDir),
		SiteSetup:    pl.config.Analysis.SiteSetup,
		RuntimeSetup: pl.config.Analysis.RuntimeSetup,
		NotifyDomain: pl.config.Grid.NotifyDomain,
	}
	for _, batch := range batches {
		job := &Job{
			Batch:      batch,
			Script:     ScriptName(batch.Index),
			JDL:        JDLName(batch.Index),
			OutputFile: pl.layout.OutputFile(d, batch.Index),
		}
		job.Chain = pl.chain(p, job)
		p.Jobs = append(p.Jobs, job)
	}
	p.Stages = pl.stages(p)
	return p
}

// chain runs the analysis on the files of job, copies the output to storage and removes the local copy.
func (pl *planner) chain(p *Plan, job *Job) Chain {
	analysis := pl.config.Analysis
	args := []string{
		word(analysis.Executable),
		word(analysis.ConfigFile),
		keyValue("subprocess", p.Dataset.Subprocess),
		keyValue("generation", p.Dataset.Generation),
		"cutPtFilter=" + strconv.Itoa(analysis.CutPtFilter),
		keyValue("outDir", "."),
		keyValue("outFile", job.OutputFile),
		keyValues("inFile", job.Files),
	}
	if p.Sample.Data {
		args = append(args, "data=True")
	}
	if p.Sample.Mask != "" {
		args = append(args, keyValue("mask", p.Sample.Mask))
	}
	return Chain{
		strings.Join(args, " "),
		command("xrdcp", "-f", job.OutputFile, pl.remoteURL(p.RemotePath)),
		command("rm", job.OutputFile),
	}
}

// stages lists the steps of the driver script, in order.
func (pl *planner) stages(p *Plan) []Stage {
	grid := pl.config.Grid
	env := pl.config.Environment
	base := "$" + env.BaseVariable
	stages := make([]Stage, 0, 7)

	if grid.CacheScript != "" {
		stages = append(stages, Stage{
			Comment:  "Update cache info:",
			Commands: []string{"bash " + grid.CacheScript},
		})
	}
	stages = append(stages, Stage{
		Comment: "Check the grid proxy:",
		Credential: &Credential{
			Info: []string{"voms-proxy-info", "-timeleft"},
			Init: []string{"voms-proxy-init", "-voms", grid.VO, "--valid", grid.Validity},
		},
	})
	if len(env.Packages) > 0 {
		copies := make([]string, 0, len(env.Packages))
		for _, pkg := range env.Packages {
			copies = append(copies, "cp -r "+pkg+" "+base+"/python")
		}
		stages = append(stages, Stage{
			Comment:  "Copy python packages into the environment area:",
			Commands: copies,
		})
	}
	stages = append(stages, Stage{
		Comment: "Make a tarball of the environment area:",
		Commands: []string{
			"tar --exclude-caches-all -zcf " + word(p.Archive()) + " -C " + base + "/.. " + word(p.Version),
		},
	})
	stages = append(stages, Stage{
		Comment:  "Prepare the output directory:",
		Commands: []string{command("eos", pl.storageURL(), "mkdir", "-p", p.RemotePath)},
	})
	submits := make([]string, 0, len(p.Jobs))
	for _, job := range p.Jobs {
		submits = append(submits, command("condor_submit", job.JDL))
	}
	stages = append(stages, Stage{
		Comment:  "Submit the jobs:",
		Commands: submits,
		Submits:  true,
	})

	cleanup := []string{command("rm", p.Archive())}
	for _, pkg := range env.Packages {
		cleanup = append(cleanup, "rm -rf "+base+"/python/"+path.Base(pkg))
	}
	stages = append(stages, Stage{
		Comment:  "Clean up:",
		Commands: cleanup,
		Disabled: true,
	})
	return stages
}

func (pl *planner) storageURL() string {
	return "root://" + pl.config.Storage.Host
}

func (pl *planner) remoteURL(remotePath string) string {
	return pl.storageURL() + "/" + remotePath
}
