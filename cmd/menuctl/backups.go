package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/pkg/types"
)

func newBackupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Aliases: []string{"history"},
		Short:   "List, restore and prune document backups",
	}
	cmd.AddCommand(
		newBackupsListCmd(a),
		newBackupsRestoreCmd(a),
		newBackupsPruneCmd(a),
	)
	return cmd
}

func kindArg(s string) (types.Kind, error) {
	return types.ParseKind(s)
}

func newBackupsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list <categories|dishes>",
		Short:     "List backups of a document, newest first",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.KindCategories), string(types.KindDishes)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			backups, err := st.Catalog().List(kind)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), backups)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tTIME\tSIZE\tRESTORE")
			for _, b := range backups {
				when := "-"
				if !b.Time.IsZero() {
					when = b.Time.Local().Format(time.DateTime)
				}
				restore := ""
				if b.Restore {
					restore = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.File, when, b.Size, restore)
			}
			return tw.Flush()
		},
	}
}

func newBackupsRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <categories|dishes> <file>",
		Short: "Replace a live document with one of its backups",
		Long: `Copy the named backup over the live document. The current document is
first saved as a restore backup, so a restore can itself be undone.

Example:
  menuctl backups restore dishes dishes.json.bak.2026-03-01T12-00-00-000000000Z --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			if err := requireYes(cmd, "restoring "+args[1]); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			safety, err := st.Catalog().Restore(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]string{"restored": args[1], "safetyBackup": safety})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", kind.FileName(), args[1])
			if safety != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "previous version saved as %s\n", safety)
			}
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}

func newBackupsPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <categories|dishes>",
		Short: "Remove backups outside the configured retention",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			removed, err := st.Catalog().Prune(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d backups\n", len(removed))
			return nil
		},
	}
}
