package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/internal/importer"
	"github.com/chero-kobuleti/menu/pkg/types"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <categories|dishes> <file.csv>",
		Short: "Replace a document with the rows of a spreadsheet export",
		Long: `Convert a CSV export and save it as the whole document. The current
document is backed up first. Replacing a non-empty document needs --yes.

Categories need the columns id, order, ka, en and ru. Dishes read id, order,
category_id, ka, en, ru, price, vegetarian, topRated, soldOut, description_*
and story_*; a price like "23.00/25.00" imports as 23.00.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", types.ErrNotFound, err)
			}
			defer f.Close()

			st, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var n int
			switch kind {
			case types.KindCategories:
				doc, err := importer.Categories(f)
				if err != nil {
					return err
				}
				if cur, err := st.LoadCategories(ctx); err == nil && len(cur.Items) > 0 {
					if err := requireYes(cmd, fmt.Sprintf("replacing %d categories", len(cur.Items))); err != nil {
						return err
					}
				}
				if err := st.ReplaceCategories(ctx, doc.Items); err != nil {
					return err
				}
				n = len(doc.Items)
			case types.KindDishes:
				doc, err := importer.Dishes(f)
				if err != nil {
					return err
				}
				if cur, err := st.LoadDishes(ctx); err == nil && len(cur.Items) > 0 {
					if err := requireYes(cmd, fmt.Sprintf("replacing %d dishes", len(cur.Items))); err != nil {
						return err
					}
				}
				if err := st.SaveDishes(ctx, doc); err != nil {
					return err
				}
				n = len(doc.Items)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s from %s\n", n, kind, args[1])
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}
