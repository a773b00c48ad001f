// Package build holds build information set at link time, e.g.
// go build -ldflags "-X github.com/fatjet-analysis/condorctl/internal/condorctl/build.GitCommit=$(git rev-parse HEAD)"
package build

var (
	ReleaseVersion = "dev"
	GitCommit      = "unknown"
	GoVersion      = "unknown"
	BuildTime      = "unknown"
)
