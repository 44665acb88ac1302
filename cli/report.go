package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sales-dashboard/models"
	"sales-dashboard/services"
	"sales-dashboard/storage"
)

type reportOptions struct {
	user     string
	secret   string
	category string
	top      int
	details  bool
	export   string
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Log in and print the dashboard report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			_, _ = a.ensureImported(ctx, "")

			session := a.newSession()
			if err := session.Login(ctx, opts.user, opts.secret); err != nil {
				if errors.Is(err, services.ErrAuthFailure) {
					return withCode(exitAuth, err)
				}
				a.logger.Error("[report] Loading records failed: %v", err)
			}

			top := opts.top
			if top <= 0 {
				top = a.cfg.TopN
			}
			return runReport(cmd, session, opts, top)
		},
	}

	cmd.Flags().StringVar(&opts.user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "Secret (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Restrict the report to one category")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Number of top products (default $TOP_N)")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Print detailed rows if permitted")
	cmd.Flags().StringVar(&opts.export, "export", "", "Write detailed rows to this CSV file if permitted")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func runReport(cmd *cobra.Command, session *services.Session, opts reportOptions, top int) error {
	out := cmd.OutOrStdout()

	if opts.category != "" {
		filter, suggestions, ok := resolveCategory(opts.category, services.Categories(session.Records()))
		if !ok {
			return withCode(exitUsage, unknownCategoryError(opts.category, suggestions))
		}
		session.SetFilter(filter)
	}

	printer := services.NewReportPrinter(out)
	printer.Print(services.BuildReport(session.Records(), session.Filter(), top))

	if !opts.details && opts.export == "" {
		return nil
	}

	rows, err := session.DetailedRecords()
	if err != nil {
		return withCode(exitForbidden, err)
	}
	if opts.details {
		printer.PrintRecords(rows)
	}
	if opts.export != "" {
		if err := exportRecords(opts.export, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d records to %s\n", len(rows), opts.export)
	}
	return nil
}

func exportRecords(path string, rows []models.NormalizedRecord) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	return writeAndClose(w, rows)
}

func writeAndClose(exporter storage.RecordExporter, rows []models.NormalizedRecord) error {
	if err := exporter.WriteRecords(rows); err != nil {
		_ = exporter.Close()
		return err
	}
	return exporter.Close()
}

func unknownCategoryError(query string, suggestions []string) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("unknown category %q", query)
	}
	return fmt.Errorf("unknown category %q, did you mean: %s", query, strings.Join(suggestions, ", "))
}
