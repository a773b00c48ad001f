package jobs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/util"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
	"github.com/fatjet-analysis/condorctl/internal/environment"
)

const (
	testVersion   = "CMSSW_8_0_26"
	testTimestamp = "161129_000557"
)

var testTime = time.Date(2016, 11, 29, 0, 5, 57, 123000000, time.UTC)

type fakeSamples map[string]*catalog.Sample

func (f fakeSamples) Sample(_ context.Context, name string) (*catalog.Sample, error) {
	if s, ok := f[name]; ok {
		return s, nil
	}
	return nil, errors.WithStack(&condorerrors.ErrNotFound{Type: "sample", Value: name})
}

var testSamples = fakeSamples{
	"qcdp":  {Name: "qcdp"},
	"jetht": {Name: "jetht", Data: true, Mask: "Cert_271036-284044_13TeV"},
}

func testConfig(baseDir string) *configuration.Config {
	return &configuration.Config{
		Batching: configuration.BatchingConfig{EventThreshold: 5000},
		Analysis: configuration.AnalysisConfig{
			CutPtFilter:  400,
			Executable:   "cmsRun",
			ConfigFile:   "tuplizer_cfg.py",
			WorkDir:      "src/Analyzers/FatjetAnalyzer/test",
			SiteSetup:    "/cvmfs/cms.cern.ch/cmsset_default.sh",
			RuntimeSetup: "eval `scramv1 runtime -sh`",
			OutputPrefix: "tuple",
		},
		Environment: configuration.EnvironmentConfig{
			VersionVariable: "CMSSW_VERSION",
			BaseVariable:    "CMSSW_BASE",
			Packages:        []string{"$HOME/decortication/decortication"},
		},
		Storage: configuration.StorageConfig{Host: "cmseos.fnal.gov", BasePath: "/store/user", User: "tote"},
		Grid: configuration.GridConfig{
			VO:           "cms",
			Validity:     "168:00",
			CacheScript:  "$HOME/condor/cache.sh",
			NotifyDomain: "FNAL.GOV",
		},
		Output: configuration.OutputConfig{BaseDir: baseDir},
	}
}

func qcdDataset() *catalog.Dataset {
	return &catalog.Dataset{
		Name:       "QCD_Pt_470to600_spring16",
		Category:   "miniaod",
		Subprocess: "qcdp470",
		Generation: "spring16",
		Sample:     "qcdp",
		Files:      []string{"/store/a.root", "/store/b.root", "/store/c.root"},
		Events:     []int{3000, 3000, 3000},
	}
}

func newTestGenerator(t *testing.T, config *configuration.Config, at time.Time) (*Generator, *bytes.Buffer) {
	out := &bytes.Buffer{}
	g, err := NewGenerator(config, testSamples, environment.Static(testVersion), util.FixedClock(at), out)
	require.NoError(t, err)
	return g, out
}

func readFile(t *testing.T, path string) string {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestGenerate_WritesArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	g, out := newTestGenerator(t, testConfig(baseDir), testTime)

	plans, err := g.Generate(context.Background(), []*catalog.Dataset{qcdDataset()})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Jobs, 2)

	dir := filepath.Join(baseDir, testTimestamp, "qcdp470_spring16_cutpt400")
	assert.Equal(t, dir, plans[0].Dir)
	assert.Equal(t,
		"Making condor setup for QCD_Pt_470to600_spring16 ...\n"+
			"\tCreating 2 jobs ...\n"+
			"\tThe jobs are in "+dir+"\n",
		out.String())

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	for _, name := range []string{"job_1.sh", "job_2.sh", DriverScriptName} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "%s should be executable", name)
	}
	for _, name := range []string{"job_1.jdl", "job_2.jdl"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Zero(t, info.Mode().Perm()&0o111, "%s should not be executable", name)
	}

	assert.Equal(t, `#!/bin/bash

# Unpack the CMSSW_8_0_26 area:
tar -xzf CMSSW_8_0_26.tar.gz
cd CMSSW_8_0_26/src/Analyzers/FatjetAnalyzer/test

# Set up the environment:
source /cvmfs/cms.cern.ch/cmsset_default.sh
eval `+"`scramv1 runtime -sh`"+`

# Run the analysis, then ship its output:
cmsRun tuplizer_cfg.py subprocess="qcdp470" generation="spring16" cutPtFilter=400 outDir="." outFile="tuple_qcdp470_spring16_cutpt400_1.root" inFile="/store/a.root","/store/b.root" &&
xrdcp -f tuple_qcdp470_spring16_cutpt400_1.root root://cmseos.fnal.gov//store/user/tote/qcdp/tuple_qcdp470_spring16_cutpt400/161129_000557 &&
rm tuple_qcdp470_spring16_cutpt400_1.root
`, readFile(t, filepath.Join(dir, "job_1.sh")))

	assert.Equal(t, `universe = vanilla
Executable = job_2.sh
Should_Transfer_Files = YES
WhenToTransferOutput = ON_EXIT
Transfer_Input_Files = CMSSW_8_0_26.tar.gz
Transfer_Output_Files = ""
Output = logs/job_2.stdout
Error = logs/job_2.stderr
Log = logs/job_2.log
notify_user = ${LOGNAME}@FNAL.GOV
x509userproxy = $ENV(X509_USER_PROXY)
Queue 1
`, readFile(t, filepath.Join(dir, "job_2.jdl")))

	assert.Equal(t, `#!/bin/bash
# Condor jobs for QCD_Pt_470to600_spring16

# Update cache info:
bash $HOME/condor/cache.sh

# Check the grid proxy:
PCHECK=`+"`voms-proxy-info -timeleft`"+`
if [[ ($? -ne 0) || ("$PCHECK" -le 0) ]]; then
	voms-proxy-init -voms cms --valid 168:00
fi

# Copy python packages into the environment area:
cp -r $HOME/decortication/decortication $CMSSW_BASE/python

# Make a tarball of the environment area:
tar --exclude-caches-all -zcf CMSSW_8_0_26.tar.gz -C $CMSSW_BASE/.. CMSSW_8_0_26

# Prepare the output directory:
eos root://cmseos.fnal.gov mkdir -p /store/user/tote/qcdp/tuple_qcdp470_spring16_cutpt400/161129_000557

# Submit the jobs:
condor_submit job_1.jdl
condor_submit job_2.jdl

# Clean up:
#rm CMSSW_8_0_26.tar.gz
#rm -rf $CMSSW_BASE/python/decortication
`, readFile(t, filepath.Join(dir, DriverScriptName)))
}

func TestGenerate_DataSampleWithMask(t *testing.T) {
	g, _ := newTestGenerator(t, testConfig(t.TempDir()), testTime)
	d := &catalog.Dataset{
		Name:       "JetHT_Run2016B",
		Subprocess: "jetht",
		Generation: "moriond17",
		Sample:     "jetht",
		Files:      []string{"/store/data/1.root"},
		Events:     []int{8000},
	}

	plans, err := g.Generate(context.Background(), []*catalog.Dataset{d})
	require.NoError(t, err)

	script := readFile(t, filepath.Join(plans[0].Dir, "job_1.sh"))
	assert.Contains(t, script, `inFile="/store/data/1.root" data=True mask="Cert_271036-284044_13TeV" &&`)
}

func TestGenerate_EmptyDatasetWritesNothing(t *testing.T) {
	baseDir := t.TempDir()
	g, out := newTestGenerator(t, testConfig(baseDir), testTime)
	d := qcdDataset()
	d.Files = nil
	d.Events = nil

	plans, err := g.Generate(context.Background(), []*catalog.Dataset{d})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].Empty())
	assert.Equal(t, "Making condor setup for QCD_Pt_470to600_spring16 ...\n", out.String())

	_, err = os.Stat(filepath.Join(baseDir, testTimestamp))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_SameTimestampOverwrites(t *testing.T) {
	baseDir := t.TempDir()
	g, _ := newTestGenerator(t, testConfig(baseDir), testTime)

	first, err := g.Generate(context.Background(), []*catalog.Dataset{qcdDataset()})
	require.NoError(t, err)
	before := readFile(t, filepath.Join(first[0].Dir, "job_1.sh"))

	second, err := g.Generate(context.Background(), []*catalog.Dataset{qcdDataset()})
	require.NoError(t, err)
	assert.Equal(t, first[0].Dir, second[0].Dir)
	assert.Equal(t, before, readFile(t, filepath.Join(second[0].Dir, "job_1.sh")))
}

func TestGenerate_DifferentTimestampsAreDisjoint(t *testing.T) {
	baseDir := t.TempDir()
	early, _ := newTestGenerator(t, testConfig(baseDir), testTime)
	late, _ := newTestGenerator(t, testConfig(baseDir), testTime.Add(time.Second))

	a, err := early.Generate(context.Background(), []*catalog.Dataset{qcdDataset()})
	require.NoError(t, err)
	b, err := late.Generate(context.Background(), []*catalog.Dataset{qcdDataset()})
	require.NoError(t, err)

	assert.NotEqual(t, a[0].Dir, b[0].Dir)
	assert.NotEqual(t, a[0].RemotePath, b[0].RemotePath)
	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPlan_OutputFilesUniqueAcrossRun(t *testing.T) {
	g, _ := newTestGenerator(t, testConfig(t.TempDir()), testTime)
	other := qcdDataset()
	other.Name = "QCD_Pt_600to800_spring16"
	other.Subprocess = "qcdp600"

	plans, err := g.Plan(context.Background(), []*catalog.Dataset{qcdDataset(), other})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, p := range plans {
		for _, job := range p.Jobs {
			assert.False(t, seen[job.OutputFile], "duplicate output file %s", job.OutputFile)
			seen[job.OutputFile] = true
		}
	}
	assert.Len(t, seen, 4)
}

func TestPlan_RejectsSharedJobDirectory(t *testing.T) {
	baseDir := t.TempDir()
	g, _ := newTestGenerator(t, testConfig(baseDir), testTime)
	twin := qcdDataset()
	twin.Name = "QCD_Pt_470to600_spring16_ext1"

	_, err := g.Generate(context.Background(), []*catalog.Dataset{qcdDataset(), twin})
	var e *condorerrors.ErrAlreadyExists
	assert.True(t, errors.As(err, &e), "unexpected error %v", err)

	_, err = os.Stat(filepath.Join(baseDir, testTimestamp))
	assert.True(t, os.IsNotExist(err))
}

func TestPlan_Errors(t *testing.T) {
	tests := map[string]struct {
		versions environment.VersionSource
		dataset  func() *catalog.Dataset
		check    func(err error) bool
	}{
		"unknown sample": {
			versions: environment.Static(testVersion),
			dataset: func() *catalog.Dataset {
				d := qcdDataset()
				d.Sample = "missing"
				return d
			},
			check: func(err error) bool {
				var e *condorerrors.ErrNotFound
				return errors.As(err, &e)
			},
		},
		"missing environment version": {
			versions: &environment.EnvVersion{
				Variable:  "CMSSW_VERSION",
				LookupEnv: func(string) (string, bool) { return "", false },
			},
			dataset: qcdDataset,
			check: func(err error) bool {
				var e *condorerrors.ErrNotFound
				return errors.As(err, &e)
			},
		},
		"mismatched event counts": {
			versions: environment.Static(testVersion),
			dataset: func() *catalog.Dataset {
				d := qcdDataset()
				d.Events = d.Events[:1]
				return d
			},
			check: func(err error) bool {
				var e *condorerrors.ErrInvalidArgument
				return errors.As(err, &e)
			},
		},
		"event counts without files": {
			versions: environment.Static(testVersion),
			dataset: func() *catalog.Dataset {
				d := qcdDataset()
				d.Files = []string{}
				d.Events = []int{5000, 7000}
				return d
			},
			check: func(err error) bool {
				var e *condorerrors.ErrInvalidArgument
				return errors.As(err, &e)
			},
		},
		"missing labels": {
			versions: environment.Static(testVersion),
			dataset: func() *catalog.Dataset {
				d := qcdDataset()
				d.Subprocess = ""
				return d
			},
			check: func(err error) bool {
				var e *condorerrors.ErrInvalidArgument
				return errors.As(err, &e)
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := NewGenerator(testConfig(t.TempDir()), testSamples, tc.versions, util.FixedClock(testTime), &bytes.Buffer{})
			require.NoError(t, err)
			_, err = g.Plan(context.Background(), []*catalog.Dataset{tc.dataset()})
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error %v", err)
		})
	}
}
