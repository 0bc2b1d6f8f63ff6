package main

import (
	"cmp"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/internal/store"
	"github.com/chero-kobuleti/menu/pkg/types"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List and edit menu categories",
	}
	cmd.AddCommand(
		newCategoriesListCmd(a),
		newCategoriesSetCmd(a),
		newCategoriesStatusCmd(a),
		newCategoriesReorderCmd(a),
		newCategoriesDeleteCmd(a),
	)
	return cmd
}

func newCategoriesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			doc, err := st.LoadCategories(cmd.Context())
			if err != nil {
				return err
			}
			items := slices.Clone(doc.Items)
			slices.SortStableFunc(items, func(x, y types.Category) int { return cmp.Compare(x.Order, y.Order) })
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tID\tSTATUS\tTITLE (KA)\tTITLE (EN)")
			for _, c := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.Order, c.ID, c.Status, c.Title.KA, c.Title.EN)
			}
			return tw.Flush()
		},
	}
}

func newCategoriesSetCmd(a *app) *cobra.Command {
	var (
		status string
		title  localeFlags
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace a category",
		Long: `Create the category or replace the existing one with the same id.
Without --order a new category goes last and an existing one keeps its place.

Example:
  menuctl categories set bakery --ka საცხობი --en Bakery --ru Выпечка`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			c, err := st.UpsertCategory(cmd.Context(), store.CategoryInput{
				ID:     args[0],
				Order:  optionalInt(cmd, "order"),
				Status: types.Status(status),
				Title:  title.text(),
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved category %s (order %d, %s)\n", c.ID, c.Order, c.Status)
			return nil
		},
	}
	cmd.Flags().Int("order", 0, "display order")
	cmd.Flags().StringVar(&status, "status", string(types.StatusActive), "active or hidden")
	title.register(cmd, "", "title")
	return cmd
}

func newCategoriesStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <active|hidden>",
		Short: "Publish or hide a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := statusArg(args[1])
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.SetCategoryStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "category %s is %s\n", args[0], status)
			return nil
		},
	}
}

func newCategoriesReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the display order of categories",
		Long:  "Number the listed categories 10, 20, 30... in the given order.\nCategories not listed keep their order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.ReorderCategories(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reordered %d categories\n", len(args))
			return nil
		},
	}
}

func newCategoriesDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category that has no dishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireYes(cmd, "deleting category "+args[0]); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}
