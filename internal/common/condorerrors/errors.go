// Package condorerrors contains generic errors returned throughout condorctl.
// The command entrypoint looks for the error types defined in this file and sets the
// process exit code accordingly.
//
// If multiple errors occur in some function (e.g., several catalog entries are malformed),
// that function should return an error of type multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates those individual errors.
package condorerrors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrAlreadyExists is a generic error to be returned whenever some resource already exists.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrAlreadyExists struct {
	Type    string // Resource type, e.g., "dataset" or "job directory"
	Value   string // Resource name, e.g., "condor_jobs/tuplizer/..."
	Message string // An optional message to include in the error message
}

func (err *ErrAlreadyExists) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q already exists", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q already exists", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
//
// See ErrAlreadyExists for more info.
type ErrNotFound struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "eventThreshold"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %q is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}

// ErrCommandFailed is returned when an external command (condor_submit, voms-proxy-init, ...)
// exits unsuccessfully. Output holds whatever the command wrote before failing.
type ErrCommandFailed struct {
	Command  []string
	ExitCode int
	Output   string
}

func (err *ErrCommandFailed) Error() string {
	s := fmt.Sprintf("command %q exited with code %d", strings.Join(err.Command, " "), err.ExitCode)
	if out := strings.TrimSpace(err.Output); out != "" {
		return s + fmt.Sprintf("; output: %s", out)
	}
	return s
}

// Process exit codes returned by ExitCodeFromError.
const (
	ExitOK              = 0
	ExitUnknown         = 1
	ExitInvalidArgument = 2
	ExitNotFound        = 3
	ExitAlreadyExists   = 4
	ExitCommandFailed   = 5
)

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitOK
	}

	// Using {} scopes just to re-use the "e" variable name for each case.
	{
		var e *ErrAlreadyExists
		if errors.As(err, &e) {
			return ExitAlreadyExists
		}
	}
	{
		var e *ErrNotFound
		if errors.As(err, &e) {
			return ExitNotFound
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return ExitInvalidArgument
		}
	}
	{
		var e *ErrCommandFailed
		if errors.As(err, &e) {
			return ExitCommandFailed
		}
	}
	return ExitUnknown
}
