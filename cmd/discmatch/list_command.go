package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discmatch/internal/album"
)

func newListCommand(appCtx *appContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the tracked album folders and their match status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			store, err := appCtx.openStore()
			if err != nil {
				return err
			}

			var entries []album.Entry
			if statusFlag != "" {
				status, err := parseStatus(statusFlag)
				if err != nil {
					return err
				}
				entries, err = store.ListByStatus(cmd.Context(), status)
				if err != nil {
					return err
				}
			} else {
				entries, err = store.List(cmd.Context())
				if err != nil {
					return err
				}
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries. Run `discmatch scan` first.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for i, e := range entries {
				title, year, id := releaseSummary(&e)
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					e.FolderName,
					e.Status.DisplayName(),
					title,
					year,
					id,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Folder", "Status", "Matched Release", "Year", "Discogs ID"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show entries with this status")
	return cmd
}
