//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const buildPackage = "github.com/fatjet-analysis/condorctl/internal/condorctl/build"

var LocalBin = filepath.Join(os.Getenv("PWD"), "/bin")

func makeLocalBin() error {
	if _, err := os.Stat(LocalBin); os.IsNotExist(err) {
		err = os.MkdirAll(LocalBin, os.ModePerm)
		if err != nil {
			return err
		}
	}
	return nil
}

// Build builds condorctl into ./bin, with the release version and git commit linked in.
// The release version is read from $CONDORCTL_RELEASE_VERSION and defaults to dev.
func Build() error {
	mg.Deps(makeLocalBin)
	timeTaken := time.Now()
	out := filepath.Join(LocalBin, binaryWithExt("condorctl"))
	err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, "./cmd/condorctl")
	if err != nil {
		return err
	}
	fmt.Println("Built", out, "in", time.Since(timeTaken))
	return nil
}

func ldflags() string {
	version := os.Getenv("CONDORCTL_RELEASE_VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	vars := map[string]string{
		"ReleaseVersion": version,
		"GitCommit":      commit,
		"GoVersion":      runtime.Version(),
		"BuildTime":      time.Now().UTC().Format(time.RFC3339),
	}
	flags := make([]string, 0, len(vars))
	for name, value := range vars {
		flags = append(flags, fmt.Sprintf("-X %s.%s=%s", buildPackage, name, value))
	}
	return strings.Join(flags, " ")
}

// Cleans build and test output.
func Clean() error {
	fmt.Println("Cleaning...")
	var result *multierror.Error
	for _, path := range []string{"bin", "condorctl_coverage.xml", "test-reports"} {
		if err := os.RemoveAll(path); err != nil {
			result = multierror.Append(result, fmt.Errorf("error removing %s: %w", path, err))
		}
	}
	return result.ErrorOrNil()
}
