package jobs

import (
	"strings"
)

// Chain is a list of shell commands in which every command runs only if the one before it succeeded.
type Chain []string

// Shell renders the chain with one command per line, joined by &&.
func (c Chain) Shell() string {
	return strings.Join(c, " &&\n")
}

// Credential describes a grid proxy check. Info prints the remaining proxy lifetime in seconds;
// Init is run when Info fails or reports a lifetime of zero or less.
type Credential struct {
	Info []string
	Init []string
}

func (c *Credential) InfoCommand() string {
	return command(c.Info...)
}

func (c *Credential) InitCommand() string {
	return command(c.Init...)
}

// Stage is one step of a driver script. Either Credential is set, or Commands holds shell lines
// that are run in order, stopping at the first failure. Disabled stages are rendered commented
// out and never executed.
type Stage struct {
	Comment    string
	Commands   []string
	Credential *Credential
	Disabled   bool
	// Set on the stage that submits jobs, so that the cluster ids can be picked out of its output.
	Submits bool
}
