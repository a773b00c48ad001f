package submit

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/fatjet-analysis/condorctl/internal/common/condorerrors"
)

// Executor runs an external command in dir and returns its combined output.
// A command that exits non-zero yields *condorerrors.ErrCommandFailed.
type Executor interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

type ExecExecutor struct{}

func (e *ExecExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.Bytes(), errors.WithStack(ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), errors.WithStack(&condorerrors.ErrCommandFailed{
			Command:  append([]string{name}, args...),
			ExitCode: exitErr.ExitCode(),
			Output:   out.String(),
		})
	}
	return out.Bytes(), errors.Wrapf(err, "error running %s", name)
}
