package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sales-dashboard/services"
)

func newImportCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the sales export into the database if it holds no data yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.ensureImported(ctx, source)
			if err != nil {
				return withCode(exitImport, err)
			}

			out := cmd.OutOrStdout()
			switch res.Outcome {
			case services.OutcomeImported:
				fmt.Fprintf(out, "Imported %d rows (import %s)\n", res.Rows, res.ImportID)
			case services.OutcomeAlreadyPresent:
				fmt.Fprintf(out, "Data already present, nothing to do (import %s)\n", res.ImportID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source CSV or XLSX file (default $SALES_SOURCE_PATH)")
	return cmd
}
