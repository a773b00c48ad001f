// Package environment answers which release of the analysis environment jobs are built against.
// The version names both the tarball shipped with every job and the directory it unpacks to.
package environment

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

const DefaultVersionVariable = "CMSSW_VERSION"

type VersionSource interface {
	Version() (string, error)
}

// EnvVersion reads the version from an environment variable of the current process, which the
// environment's own setup (cmsenv) exports.
type EnvVersion struct {
	Variable string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func NewEnvVersion(variable string) *EnvVersion {
	if variable == "" {
		variable = DefaultVersionVariable
	}
	return &EnvVersion{Variable: variable, LookupEnv: os.LookupEnv}
}

func (e *EnvVersion) Version() (string, error) {
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(e.Variable)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", errors.WithStack(&condorerrors.ErrNotFound{
			Type:    "environment variable",
			Value:   e.Variable,
			Message: "set up the analysis environment (cmsenv) first or pass --environmentVersion",
		})
	}
	return value, nil
}

// Static always returns the same version.
type Static string

func (s Static) Version() (string, error) {
	if s == "" {
		return "", errors.WithStack(&condorerrors.ErrInvalidArgument{Name: "environmentVersion", Value: "", Message: "must not be empty"})
	}
	return string(s), nil
}
