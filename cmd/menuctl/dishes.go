package main

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/internal/store"
	"github.com/chero-kobuleti/menu/pkg/types"
)

func newDishesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dishes",
		Aliases: []string{"dish"},
		Short:   "List and edit dishes",
	}
	cmd.AddCommand(
		newDishesListCmd(a),
		newDishesSetCmd(a),
		newDishesStatusCmd(a),
		newDishesReorderCmd(a),
		newDishesPhotoCmd(a),
		newDishesDeleteCmd(a),
	)
	return cmd
}

func newDishesListCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dishes by category and order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			doc, err := st.LoadDishes(cmd.Context())
			if err != nil {
				return err
			}
			items := make([]types.Dish, 0, len(doc.Items))
			for _, d := range doc.Items {
				if category == "" || d.CategoryID == category {
					items = append(items, d)
				}
			}
			slices.SortStableFunc(items, func(x, y types.Dish) int {
				return cmp.Or(cmp.Compare(x.CategoryID, y.CategoryID), cmp.Compare(x.Order, y.Order))
			})
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tORDER\tID\tSTATUS\tPRICE\tTITLE (EN)")
			for _, d := range items {
				status := string(d.Status)
				if d.SoldOut {
					status += ",sold-out"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
					d.CategoryID, d.Order, d.ID, status, formatPrice(d.PriceMinor), d.Title.EN)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only dishes of this category")
	return cmd
}

func newDishesSetCmd(a *app) *cobra.Command {
	var (
		in                        store.DishInput
		status                    string
		price                     float64
		title, description, story localeFlags
		priceLabel                localeFlags
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace a dish",
		Long: `Create the dish or replace the existing one with the same id. Fields not
given are reset to their empty value, except the order and the photo which
are kept for an existing dish.

Example:
  menuctl dishes set khachapuri --category bakery --price 18.90 --en Khachapuri`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			in.ID = args[0]
			in.Order = optionalInt(cmd, "order")
			in.Status = types.Status(status)
			in.PriceMinor = int64(math.Round(price * 100))
			in.Title = title.text()
			in.Description = description.text()
			in.Story = story.text()
			in.PriceLabel = priceLabel.text()

			d, err := st.UpsertDish(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved dish %s in %s (order %d, %s GEL)\n",
				d.ID, d.CategoryID, d.Order, formatPrice(d.PriceMinor))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.CategoryID, "category", "", "category id (required)")
	f.Int("order", 0, "display order within the category")
	f.StringVar(&status, "status", string(types.StatusActive), "active or hidden")
	f.Float64Var(&price, "price", 0, "price in GEL")
	f.BoolVar(&in.Vegetarian, "vegetarian", false, "mark as vegetarian")
	f.BoolVar(&in.TopRated, "top-rated", false, "mark as top rated")
	f.BoolVar(&in.ChefsPick, "chefs-pick", false, "mark as chef's pick")
	f.BoolVar(&in.SoldOut, "sold-out", false, "mark as sold out")
	title.register(cmd, "", "title")
	description.register(cmd, "description", "description")
	story.register(cmd, "story", "story")
	priceLabel.register(cmd, "price-label", "price label")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newDishesStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <active|hidden>",
		Short: "Publish or hide a dish",
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
			if err := st.SetDishStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dish %s is %s\n", args[0], status)
			return nil
		},
	}
}

func newDishesReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <category> <id>...",
		Short: "Set the display order of dishes within a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.ReorderDishes(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reordered %d dishes in %s\n", len(args)-1, args[0])
			return nil
		},
	}
}

func newDishesPhotoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id>",
		Short: "Record the rendered photo files of a dish",
		Long:  "Point the dish at dish_<id>_1600.webp and dish_<id>_800.webp in the uploads directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			photo, err := st.SetDishPhoto(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), photo)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dish %s uses %s and %s\n", args[0], photo.Full, photo.Small)
			return nil
		},
	}
}

func newDishesDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireYes(cmd, "deleting dish "+args[0]); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.DeleteDish(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted dish %s\n", args[0])
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}
