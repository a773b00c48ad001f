// Package submit runs the driver stages of generated job directories directly, instead of
// through the run.sh rendered from the same stages.
package submit

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fatjet-analysis/condorctl/internal/jobs"
)

const shell = "bash"

// condor_submit reports e.g. "1 job(s) submitted to cluster 4711."
var clusterPattern = regexp.MustCompile(`submitted to cluster (\d+)`)

type Runner struct {
	executor Executor
}

func NewRunner(executor Executor) *Runner {
	return &Runner{executor: executor}
}

// Submit runs the stages of p in its job directory and returns the ids of the submitted clusters.
// It stops at the first failing command.
func (r *Runner) Submit(ctx context.Context, p *jobs.Plan) ([]int, error) {
	log.Infof("submitting %d jobs of %s", len(p.Jobs), p.Dataset.Name)
	var clusters []int
	for _, stage := range p.Stages {
		if stage.Disabled {
			log.Debugf("skipping disabled stage %q", stage.Comment)
			continue
		}
		if err := ctx.Err(); err != nil {
			return clusters, errors.WithStack(err)
		}
		log.Debugf("running stage %q in %s", stage.Comment, p.Dir)
		if stage.Credential != nil {
			if err := r.ensureCredential(ctx, p.Dir, stage.Credential); err != nil {
				return clusters, err
			}
			continue
		}
		for _, line := range stage.Commands {
			if err := ctx.Err(); err != nil {
				return clusters, errors.WithStack(err)
			}
			out, err := r.executor.Run(ctx, p.Dir, shell, "-c", line)
			if err != nil {
				return clusters, errors.WithMessagef(err, "stage %q failed", strings.TrimSuffix(stage.Comment, ":"))
			}
			if stage.Submits {
				cluster, ok := parseCluster(out)
				if !ok {
					log.Warnf("could not find a cluster id in the output of %q", line)
					continue
				}
				log.Infof("%s: submitted to cluster %d", line, cluster)
				clusters = append(clusters, cluster)
			}
		}
	}
	return clusters, nil
}

// ensureCredential creates a new proxy unless the info command reports a positive lifetime. Any
// failure of the info command, including a missing binary, counts as having no proxy.
func (r *Runner) ensureCredential(ctx context.Context, dir string, c *jobs.Credential) error {
	out, err := r.executor.Run(ctx, dir, c.Info[0], c.Info[1:]...)
	if err == nil {
		lifetime, parseErr := strconv.Atoi(strings.TrimSpace(string(out)))
		if parseErr == nil && lifetime > 0 {
			log.Debugf("grid proxy valid for another %ds", lifetime)
			return nil
		}
		log.Infof("grid proxy expired; creating a new one")
	} else {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.WithStack(ctxErr)
		}
		log.WithError(err).Infof("no valid grid proxy; creating a new one")
	}
	if _, err := r.executor.Run(ctx, dir, c.Init[0], c.Init[1:]...); err != nil {
		return errors.WithMessage(err, "error creating grid proxy")
	}
	return nil
}

func parseCluster(out []byte) (int, bool) {
	m := clusterPattern.FindSubmatch(out)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, false
	}
	return id, true
}
