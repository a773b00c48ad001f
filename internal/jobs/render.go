package jobs

import (
	"bytes"
	"embed"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

const (
	jobScriptTemplate = "job.sh.tmpl"
	jdlTemplate       = "job.jdl.tmpl"
	driverTemplate    = "run.sh.tmpl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type jobScriptData struct {
	Version      string
	Archive      string
	WorkDir      string
	SiteSetup    string
	RuntimeSetup string
	Chain        Chain
}

type jdlData struct {
	Script       string
	Archive      string
	Stdout       string
	Stderr       string
	Log          string
	NotifyDomain string
}

type driverData struct {
	Dataset string
	Stages  []Stage
}

// Renderer renders the job artifacts from the templates embedded in the binary.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("jobs").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "error parsing job templates")
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) render(w io.Writer, name string, data interface{}) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "error rendering %s", name)
	}
	return nil
}

// JobScript renders the wrapper script of one job of p.
func (r *Renderer) JobScript(w io.Writer, p *Plan, job *Job) error {
	return r.render(w, jobScriptTemplate, jobScriptData{
		Version:      p.Version,
		Archive:      word(p.Archive()),
		WorkDir:      word(p.WorkDir),
		SiteSetup:    p.SiteSetup,
		RuntimeSetup: p.RuntimeSetup,
		Chain:        job.Chain,
	})
}

// JDL renders the condor job description of one job of p.
func (r *Renderer) JDL(w io.Writer, p *Plan, job *Job) error {
	return r.render(w, jdlTemplate, jdlData{
		Script:       job.Script,
		Archive:      p.Archive(),
		Stdout:       LogFile(job.Index, "stdout"),
		Stderr:       LogFile(job.Index, "stderr"),
		Log:          LogFile(job.Index, "log"),
		NotifyDomain: p.NotifyDomain,
	})
}

// Driver renders the run.sh of p.
func (r *Renderer) Driver(w io.Writer, p *Plan) error {
	return r.render(w, driverTemplate, driverData{
		Dataset: p.Dataset.Name,
		Stages:  p.Stages,
	})
}

// writeFile renders into memory first so that a template error never leaves a truncated file.
func writeFile(path string, mode os.FileMode, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
