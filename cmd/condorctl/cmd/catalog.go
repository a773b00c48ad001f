package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fatjet-analysis/condorctl/internal/condorctl"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the dataset catalog.",
	}
	cmd.AddCommand(
		catalogListCmd(condorctl.New()),
		catalogImportCmd(condorctl.New()),
	)
	return cmd
}

// Takes a caller-supplied app struct; useful for testing.
func catalogListCmd(app *condorctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the datasets matching a query.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app, map[string]string{
				"category":       "catalog.category",
				"eventThreshold": "batching.eventThreshold",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			query, err := cmd.Flags().GetString("query")
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return app.ListCatalog(ctx, query)
		},
	}
	cmd.Flags().StringP("query", "q", "", "Catalog query selecting the datasets.")
	cmd.Flags().String("category", "", "Catalog category to search.")
	cmd.Flags().Int("eventThreshold", 0, "Event threshold used to count jobs.")
	return cmd
}

// Takes a caller-supplied app struct; useful for testing.
func catalogImportCmd(app *condorctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML or JSON catalog file into an SQLite catalog.",
		Long: `Import a YAML or JSON catalog file into an SQLite catalog.

The database is created if needed. Samples and datasets already present are
replaced by name; the import happens in a single transaction.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("catalogBackend") {
				if err := cmd.Flags().Set("catalogBackend", "sqlite"); err != nil {
					return err
				}
			}
			return initParams(cmd, app, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Out = cmd.OutOrStdout()
			ctx, cancel := signalContext()
			defer cancel()
			return app.ImportCatalog(ctx, args[0])
		},
	}
	return cmd
}
