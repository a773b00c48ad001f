package configuration

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CONDORCTL"

// SetDefaults registers the default of every key. Keys without a default are invisible to
// viper.AutomaticEnv, so every field of Config must appear here.
func SetDefaults() {
	viper.SetDefault("catalog.backend", "file")
	viper.SetDefault("catalog.path", "~/.condorctl/catalog.yaml")
	viper.SetDefault("catalog.category", "miniaod")

	viper.SetDefault("batching.eventThreshold", 10000)

	viper.SetDefault("analysis.cutPtFilter", 400)
	viper.SetDefault("analysis.executable", "cmsRun")
	viper.SetDefault("analysis.configFile", "tuplizer_cfg.py")
	viper.SetDefault("analysis.workDir", "src/Analyzers/FatjetAnalyzer/test")
	viper.SetDefault("analysis.siteSetup", "/cvmfs/cms.cern.ch/cmsset_default.sh")
	viper.SetDefault("analysis.runtimeSetup", "eval `scramv1 runtime -sh`")
	viper.SetDefault("analysis.outputPrefix", "tuple")

	viper.SetDefault("environment.versionVariable", "CMSSW_VERSION")
	viper.SetDefault("environment.version", "")
	viper.SetDefault("environment.baseVariable", "CMSSW_BASE")
	viper.SetDefault("environment.packages", []string{
		"$HOME/decortication/decortication",
		"$HOME/decortication/resources",
		"$HOME/truculence/truculence",
	})

	viper.SetDefault("storage.host", "cmseos.fnal.gov")
	viper.SetDefault("storage.basePath", "/store/user")
	viper.SetDefault("storage.user", os.Getenv("USER"))

	viper.SetDefault("grid.vo", "cms")
	viper.SetDefault("grid.validity", "168:00")
	viper.SetDefault("grid.cacheScript", "$HOME/condor/cache.sh")
	viper.SetDefault("grid.notifyDomain", "FNAL.GOV")

	viper.SetDefault("output.baseDir", "condor_jobs/tuplizer")

	viper.SetDefault("log.file", "")
	viper.SetDefault("log.maxSizeMb", 10)
	viper.SetDefault("log.maxBackups", 3)
	viper.SetDefault("log.maxAgeDays", 28)
	viper.SetDefault("log.verbose", false)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}
