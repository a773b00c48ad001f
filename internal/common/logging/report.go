package logging

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// StacktraceKey is the field carrying the recorded stack of a reported error.
const StacktraceKey = "stacktrace"

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ReportError logs the error a command failed with. Each error of a multierror gets its own
// line so that every invalid dataset is listed. Stacks recorded by pkg/errors are logged at
// debug level only, where --verbose exposes them.
func ReportError(logger *log.Logger, err error) {
	if err == nil {
		return
	}
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		logger.Errorf("%s: %d errors occurred", contextOf(err, merr), len(merr.Errors))
		for _, e := range merr.Errors {
			reportOne(logger, e)
		}
		return
	}
	reportOne(logger, err)
}

func reportOne(logger *log.Logger, err error) {
	logger.Error(err.Error())
	if stack := ExtractStack(err); stack != nil {
		logger.WithField(StacktraceKey, stack).Debugf("%+v", stack)
	}
}

// contextOf returns the messages wrapped around target, or "command failed" when err is target.
func contextOf(err error, target error) string {
	full, inner := err.Error(), target.Error()
	if len(full) > len(inner)+2 && full[len(full)-len(inner):] == inner {
		return full[:len(full)-len(inner)-2]
	}
	return "command failed"
}

// ExtractStack returns the outermost stack trace recorded along the Unwrap chain of err, or nil.
func ExtractStack(err error) errors.StackTrace {
	var tracer stackTracer
	if errors.As(err, &tracer) {
		return tracer.StackTrace()
	}
	return nil
}
