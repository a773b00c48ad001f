package jobs

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
)

const (
	logDirName = "logs"
	// DriverScriptName is the per-dataset script that prepares the environment and submits every job.
	DriverScriptName = "run.sh"
)

// Layout decides where the artifacts of one run go, locally and on remote storage.
type Layout struct {
	// Local root of all runs, e.g. condor_jobs/tuplizer
	BaseDir string
	// Run timestamp, shared by every dataset of the run
	Timestamp string
	// Label identifying the analysis settings, e.g. cutpt400
	Suffix string
	// Prefix of output files and remote directories, e.g. tuple
	OutputPrefix string
	// Remote area the user owns, e.g. /store/user/<user>
	RemoteRoot string
}

// Suffix is the label of a run with the given transverse momentum cut.
func Suffix(cutPtFilter int) string {
	return fmt.Sprintf("cutpt%d", cutPtFilter)
}

func (l Layout) label(d *catalog.Dataset) string {
	return fmt.Sprintf("%s_%s_%s", d.Subprocess, d.Generation, l.Suffix)
}

func (l Layout) RunDir() string {
	return filepath.Join(l.BaseDir, l.Timestamp)
}

// JobDir is <baseDir>/<timestamp>/<subprocess>_<generation>_<suffix>.
func (l Layout) JobDir(d *catalog.Dataset) string {
	return filepath.Join(l.RunDir(), l.label(d))
}

func (l Layout) LogDir(d *catalog.Dataset) string {
	return filepath.Join(l.JobDir(d), logDirName)
}

// OutputFile is the name of the file the analysis writes for batch index of d.
func (l Layout) OutputFile(d *catalog.Dataset, index int) string {
	return fmt.Sprintf("%s_%s_%d.root", l.OutputPrefix, l.label(d), index)
}

// RemotePath is the storage directory receiving every output file of d.
func (l Layout) RemotePath(sample string, d *catalog.Dataset) string {
	return path.Join(l.RemoteRoot, sample, fmt.Sprintf("%s_%s", l.OutputPrefix, l.label(d)), l.Timestamp)
}

func ScriptName(index int) string {
	return fmt.Sprintf("job_%d.sh", index)
}

func JDLName(index int) string {
	return fmt.Sprintf("job_%d.jdl", index)
}

// LogFile is the path of a condor log file of batch index, relative to the job directory.
func LogFile(index int, extension string) string {
	return path.Join(logDirName, fmt.Sprintf("job_%d.%s", index, extension))
}
