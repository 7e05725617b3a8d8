package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discmatch/internal/album"
	"discmatch/internal/organize"
)

func newRenameCommand(appCtx *appContext) *cobra.Command {
	var (
		rootFlag  string
		applyFlag bool
	)

	cmd := &cobra.Command{
		Use:   "rename [ENTRY]",
		Short: "Rename completed album folders to \"Artist - Year - Album\"",
		Long: "Previews folder renames derived from each completed entry's matched\n" +
			"release. Nothing is touched unless --apply is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			if _, err := appCtx.ensureConfig(); err != nil {
				return err
			}
			root, err := appCtx.libraryRoot(rootFlag)
			if err != nil {
				return err
			}
			store, err := appCtx.openStore()
			if err != nil {
				return err
			}

			var suggestions []organize.Suggestion
			if len(args) == 1 {
				entry, err := resolveEntryArg(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				suggestions = organize.Plan([]album.Entry{*entry})
			} else {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				suggestions = organize.Plan(entries)
			}

			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to rename.")
				return nil
			}

			rows := make([][]string, 0, len(suggestions))
			for _, s := range suggestions {
				rows = append(rows, []string{s.Entry.FolderName, s.NewName})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Current", "New Name"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))

			if !applyFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "%d folder(s) would be renamed. Re-run with --apply to proceed.\n",
					len(suggestions))
				return nil
			}

			renamed := 0
			for _, s := range suggestions {
				if err := organize.Apply(cmd.Context(), store, root, s); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: %v\n", s.Entry.FolderName, err)
					continue
				}
				renamed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %d folder(s).\n", renamed)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Library root directory")
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Perform the renames instead of previewing")
	return cmd
}
