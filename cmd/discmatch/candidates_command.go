package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCandidatesCommand(appCtx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates ENTRY",
		Short: "Show the stored search results for one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			store, err := appCtx.openStore()
			if err != nil {
				return err
			}
			entry, err := resolveEntryArg(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			if len(entry.SearchResults) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no search results yet (status %s)\n",
					entry.FolderName, entry.Status.DisplayName())
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Candidates for %q:\n", entry.FolderName)
			rows := make([][]string, 0, len(entry.SearchResults))
			for i, rel := range entry.SearchResults {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					rel.Title,
					rel.Year,
					strings.Join(rel.Labels, ", "),
					rel.CatNo,
					rel.Country,
					strconv.Itoa(rel.ID),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Title", "Year", "Label", "Cat No", "Country", "Discogs ID"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	return cmd
}
