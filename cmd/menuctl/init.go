package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and empty menu documents",
		Long:  "Create the data directory and write an empty categories.json and dishes.json\nwhere they do not exist yet. Existing documents are left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			created, err := st.Init(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"dataDir": st.Config().DataDir,
					"created": created,
				})
			}
			out := cmd.OutOrStdout()
			for _, kind := range created {
				fmt.Fprintf(out, "created %s\n", kind.FileName())
			}
			fmt.Fprintf(out, "data directory %s ready\n", st.Config().DataDir)
			return nil
		},
	}
}
