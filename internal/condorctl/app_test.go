package condorctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
	"github.com/fatjet-analysis/condorctl/internal/common/util"
	"github.com/fatjet-analysis/condorctl/internal/condorctl/configuration"
)

var testCatalogPath = filepath.Join("testdata", "catalog.yaml")

type recordingExecutor struct {
	calls []string
}

func (e *recordingExecutor) Run(_ context.Context, _ string, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	e.calls = append(e.calls, line)
	switch {
	case name == "voms-proxy-info":
		return []byte("7200\n"), nil
	case strings.Contains(line, "condor_submit"):
		return []byte("1 job(s) submitted to cluster 42.\n"), nil
	}
	return nil, nil
}

func testApp(t *testing.T) (*App, *bytes.Buffer, *recordingExecutor) {
	buf := new(bytes.Buffer)
	executor := &recordingExecutor{}
	app := &App{
		Params: &Params{Config: &configuration.Config{
			Catalog:  configuration.CatalogConfig{Backend: catalog.BackendFile, Path: testCatalogPath, Category: "miniaod"},
			Batching: configuration.BatchingConfig{EventThreshold: 5000},
			Analysis: configuration.AnalysisConfig{
				CutPtFilter:  400,
				Executable:   "cmsRun",
				ConfigFile:   "tuplizer_cfg.py",
				WorkDir:      "src/Analyzers/FatjetAnalyzer/test",
				SiteSetup:    "/cvmfs/cms.cern.ch/cmsset_default.sh",
				OutputPrefix: "tuple",
			},
			Environment: configuration.EnvironmentConfig{
				VersionVariable: "CMSSW_VERSION",
				Version:         "CMSSW_8_0_26",
				BaseVariable:    "CMSSW_BASE",
			},
			Storage: configuration.StorageConfig{Host: "cmseos.fnal.gov", BasePath: "/store/user", User: "tote"},
			Grid:    configuration.GridConfig{VO: "cms", Validity: "168:00", NotifyDomain: "FNAL.GOV"},
			Output:  configuration.OutputConfig{BaseDir: t.TempDir()},
		}},
		Out:         buf,
		Clock:       util.FixedClock(time.Date(2016, 11, 29, 0, 5, 57, 0, time.UTC)),
		Executor:    executor,
		OpenCatalog: catalog.Open,
	}
	return app, buf, executor
}

func TestVersion(t *testing.T) {
	app, buf, _ := testApp(t)

	err := app.Version()
	require.NoError(t, err)

	for _, s := range []string{"Version", "Commit", "Go version", "Built"} {
		assert.Contains(t, buf.String(), s)
	}
}

func TestGenerate(t *testing.T) {
	app, buf, executor := testApp(t)
	runDir := filepath.Join(app.Params.Config.Output.BaseDir, "161129_000557")

	err := app.Generate(context.Background(), GenerateArgs{Query: "sample=qcdp"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Making condor setup for QCD_Pt_470to600_spring16 ...\n\tCreating 2 jobs ...\n")
	assert.NotContains(t, buf.String(), "JetHT")
	for _, name := range []string{"job_1.sh", "job_1.jdl", "job_2.sh", "job_2.jdl", "run.sh"} {
		assert.FileExists(t, filepath.Join(runDir, "qcdp470_spring16_cutpt400", name))
	}
	assert.Empty(t, executor.calls)
}

func TestGenerate_DryRun(t *testing.T) {
	app, buf, _ := testApp(t)

	err := app.Generate(context.Background(), GenerateArgs{DryRun: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "QCD_Pt_470to600_spring16")
	assert.Contains(t, out, "JetHT_Run2016B")
	assert.Contains(t, out, "/store/user/tote/jetht/tuple_jetht16b_moriond17_cutpt400/161129_000557")
	assert.NotContains(t, out, "Making condor setup")

	_, err = os.Stat(app.Params.Config.Output.BaseDir + "/161129_000557")
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_Submit(t *testing.T) {
	app, buf, executor := testApp(t)

	err := app.Generate(context.Background(), GenerateArgs{Query: "JetHT_*", Submit: true})
	require.NoError(t, err)

	submits := 0
	for _, call := range executor.calls {
		if strings.Contains(call, "condor_submit") {
			submits++
		}
	}
	assert.Equal(t, 2, submits)
	assert.Contains(t, buf.String(), "Submitted JetHT_Run2016B: 2 jobs in 2 clusters\n")
}

func TestGenerate_DryRunAndSubmitAreExclusive(t *testing.T) {
	app, _, executor := testApp(t)

	err := app.Generate(context.Background(), GenerateArgs{DryRun: true, Submit: true})
	var e *condorerrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &e), "unexpected error %v", err)
	assert.Empty(t, executor.calls)
}

func TestGenerate_RejectsInvalidDatasets(t *testing.T) {
	app, buf, executor := testApp(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`samples:
  - name: qcdp
datasets:
  - name: broken_empty
    category: miniaod
    subprocess: qcdpbroken
    generation: spring16
    sample: qcdp
    files: []
    ns: [5000, 7000]
  - name: nolabels
    category: miniaod
    subprocess: ""
    generation: spring16
    sample: qcdp
    files: []
    ns: [-3]
`), 0o644))
	app.Params.Config.Catalog.Path = path

	for _, args := range []GenerateArgs{{}, {DryRun: true}, {Submit: true}} {
		err := app.Generate(context.Background(), args)
		var e *condorerrors.ErrInvalidArgument
		assert.True(t, errors.As(err, &e), "unexpected error %v", err)
	}
	assert.NotContains(t, buf.String(), "Making condor setup")
	assert.Empty(t, executor.calls)

	entries, err := os.ReadDir(app.Params.Config.Output.BaseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_NoMatches(t *testing.T) {
	app, buf, _ := testApp(t)

	err := app.Generate(context.Background(), GenerateArgs{Query: "name=nothing*"})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestListCatalog(t *testing.T) {
	app, buf, _ := testApp(t)

	err := app.ListCatalog(context.Background(), "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Name", "Sample", "Subprocess", "Generation", "Files", "Events", "Jobs"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"QCD_Pt_470to600_spring16", "qcdp", "qcdp470", "spring16", "3", "9000", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"JetHT_Run2016B", "jetht", "jetht16b", "moriond17", "2", "17000", "2"}, strings.Fields(lines[2]))
}

func TestImportCatalog(t *testing.T) {
	app, buf, _ := testApp(t)
	app.Params.Config.Catalog.Backend = catalog.BackendSQLite
	app.Params.Config.Catalog.Path = filepath.Join(t.TempDir(), "catalog.db")

	err := app.ImportCatalog(context.Background(), testCatalogPath)
	require.NoError(t, err)

	err = app.ListCatalog(context.Background(), "generation=moriond17")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "JetHT_Run2016B")
	assert.NotContains(t, buf.String(), "QCD_Pt_470to600_spring16")
}

func TestImportCatalog_RequiresSQLite(t *testing.T) {
	app, _, _ := testApp(t)

	err := app.ImportCatalog(context.Background(), testCatalogPath)
	var e *condorerrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &e), "unexpected error %v", err)
}
