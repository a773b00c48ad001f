//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Gotestsum string

// Gotestsum downloads gotestsum locally if necessary
func gotestsum() error {
	mg.Deps(makeLocalBin)
	Gotestsum = filepath.Join(LocalBin, "/gotestsum")

	if _, err := os.Stat(Gotestsum); os.IsNotExist(err) {
		fmt.Println(Gotestsum)
		cmd := exec.Command("go", "install", "gotest.tools/gotestsum@v1.8.2")
		cmd.Env = append(os.Environ(), "GOBIN="+LocalBin)
		return cmd.Run()
	}
	return nil
}

// Tests runs the unit tests and writes a coverage report and a junit report to test-reports.
func Tests() error {
	mg.Deps(gotestsum)
	if err := os.MkdirAll("test-reports", os.ModePerm); err != nil {
		return err
	}
	return sh.RunV(Gotestsum,
		"--junitfile", filepath.Join("test-reports", "unit-tests.xml"),
		"--",
		"-coverprofile=condorctl_coverage.xml",
		"./internal/...", "./cmd/...",
	)
}

// TestsNoCache runs the unit tests without gotestsum, bypassing the test cache.
func TestsNoCache() error {
	return sh.RunV("go", "test", "-count=1", "./internal/...", "./cmd/...")
}
