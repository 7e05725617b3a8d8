package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discmatch/internal/export"
)

func newExportCommand(appCtx *appContext) *cobra.Command {
	var (
		formatFlag string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tracked entries to a CSV or Excel file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			store, err := appCtx.openStore()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("nothing to export: no entries tracked yet")
			}

			out := outputFlag
			switch formatFlag {
			case "csv":
				if out == "" {
					out = export.DefaultCSVName
				}
				if err := export.ExportCSV(out, entries); err != nil {
					return err
				}
			case "xlsx":
				if out == "" {
					out = export.DefaultExcelName
				}
				if err := export.ExportExcel(out, entries); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (expected csv or xlsx)", formatFlag)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "csv", "Export format: csv or xlsx")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path")
	return cmd
}
