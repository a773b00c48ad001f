package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fatjet-analysis/condorctl/internal/condorctl"
)

var generateFlagKeys = map[string]string{
	"category":           "catalog.category",
	"eventThreshold":     "batching.eventThreshold",
	"cutPtFilter":        "analysis.cutPtFilter",
	"outputDir":          "output.baseDir",
	"environmentVersion": "environment.version",
}

// Write job directories for every dataset matching a query, optionally submitting them.
func generateCmd(app *condorctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate condor jobs for the datasets matching a query.",
		Long: `Generate condor jobs for the datasets matching a query.

Every dataset gets a directory <outputDir>/<timestamp>/<subprocess>_<generation>_cutpt<n>
holding one job_<i>.sh and job_<i>.jdl per batch of files and a run.sh that
prepares the environment tarball and submits every job.

Queries are glob terms, all of which must match, e.g.
  condorctl generate -q 'QCD_Pt_*'
  condorctl generate -q 'sample=jetht generation=moriond17'`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, generateFlagKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()

			query, err := cmd.Flags().GetString("query")
			if err != nil {
				return err
			}
			dryRun, err := cmd.Flags().GetBool("dryRun")
			if err != nil {
				return err
			}
			submit, err := cmd.Flags().GetBool("submit")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			return app.Generate(ctx, condorctl.GenerateArgs{
				Query:  query,
				DryRun: dryRun,
				Submit: submit,
			})
		},
	}

	cmd.Flags().StringP("query", "q", "", "Catalog query selecting the datasets, e.g. 'QCD_*' or 'sample=qcdp'.")
	cmd.Flags().String("category", "", "Catalog category to search (default from config: miniaod).")
	cmd.Flags().Int("eventThreshold", 0, "Close a job once its files hold at least this many events.")
	cmd.Flags().Int("cutPtFilter", 0, "Transverse momentum cut passed to the analysis.")
	cmd.Flags().String("outputDir", "", "Root directory of generated jobs (default from config: condor_jobs/tuplizer).")
	cmd.Flags().String("environmentVersion", "", "Environment version to use instead of $CMSSW_VERSION.")
	cmd.Flags().Bool("dryRun", false, "Print the jobs that would be generated without writing anything.")
	cmd.Flags().Bool("submit", false, "Submit the jobs after writing them.")
	return cmd
}
