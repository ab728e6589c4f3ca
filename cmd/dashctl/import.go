package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dashboard/internal/importer"
)

func newImportInvoicesCommand(b backend) *cobra.Command {
	return &cobra.Command{
		Use:   "import-invoices <file.csv>",
		Short: "Create invoices from a CSV file with customerId, amount and status columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			invoices, release, err := b.invoices(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			report, err := importer.NewService(invoices).Import(cmd.Context(), f)
			if report != nil {
				printReport(cmd, report)
			}

			return err
		},
	}
}

func printReport(cmd *cobra.Command, report *importer.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "charset: %s\ncreated: %d\nrejected: %d\n", report.Charset, report.Created, len(report.Rejected))

	for _, r := range report.Rejected {
		var msgs []string
		for _, field := range slices.Sorted(maps.Keys(r.Errors)) {
			msgs = append(msgs, field+": "+strings.Join(r.Errors[field], " "))
		}

		fmt.Fprintf(out, "  line %d: %s\n", r.Line, strings.Join(msgs, "; "))
	}
}
