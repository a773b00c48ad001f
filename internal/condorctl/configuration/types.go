package configuration

// Config holds every setting of a condorctl run. It is assembled by viper from defaults, config
// files, CONDORCTL_* environment variables and command-line flags, in increasing precedence.
type Config struct {
	Catalog     CatalogConfig
	Batching    BatchingConfig
	Analysis    AnalysisConfig
	Environment EnvironmentConfig
	Storage     StorageConfig
	Grid        GridConfig
	Output      OutputConfig
	Log         LogConfig
}

type CatalogConfig struct {
	// Either "file" (YAML or JSON document) or "sqlite"
	Backend string `validate:"oneof=file sqlite"`
	Path    string `validate:"required"`
	// Category of entries to generate jobs for, e.g. miniaod
	Category string `validate:"required"`
}

type BatchingConfig struct {
	// A job is closed as soon as its files hold at least this many events
	EventThreshold int `validate:"gt=0"`
}

type AnalysisConfig struct {
	// Transverse momentum cut handed to the analysis; also names the output (cutpt<n>)
	CutPtFilter int `validate:"gte=0"`
	// Executable run by every job, e.g. cmsRun
	Executable string `validate:"required"`
	// Configuration file passed to Executable, relative to WorkDir
	ConfigFile string `validate:"required"`
	// Directory inside the unpacked environment area the job changes into
	WorkDir string `validate:"required"`
	// Site script sourced before running
	SiteSetup string `validate:"required"`
	// Optional shell line evaluated after SiteSetup, e.g. eval `scramv1 runtime -sh`
	RuntimeSetup string
	// Prefix of output file and output directory names
	OutputPrefix string `validate:"required"`
}

type EnvironmentConfig struct {
	// Environment variable holding the environment version, e.g. CMSSW_VERSION
	VersionVariable string `validate:"required"`
	// If set, used instead of reading VersionVariable
	Version string
	// Environment variable holding the root of the environment area, e.g. CMSSW_BASE
	BaseVariable string `validate:"required"`
	// Directories copied into $<BaseVariable>/python before the environment is archived
	Packages []string
}

type StorageConfig struct {
	// XRootD host of the remote storage, e.g. cmseos.fnal.gov
	Host string `validate:"required"`
	// Remote directory user areas live under
	BasePath string `validate:"required"`
	// Owner of the remote user area
	User string `validate:"required"`
}

type GridConfig struct {
	// Virtual organisation for voms-proxy-init
	VO string `validate:"required"`
	// Lifetime requested for a new proxy, hh:mm
	Validity string `validate:"required"`
	// Optional script run before submitting to refresh cached site information
	CacheScript string
	// Mail domain appended to $LOGNAME for condor notifications
	NotifyDomain string `validate:"required"`
}

type OutputConfig struct {
	// Root of the generated job tree
	BaseDir string `validate:"required"`
}

type LogConfig struct {
	// If set, log entries are also written to this file, rotated by size
	File       string
	MaxSizeMb  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
	Verbose    bool
}
