package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/pkg/types"
)

func newMenuCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the published menu for one language",
		Long:  "Print what the public menu shows: active categories and their active dishes\nin display order, with texts in the chosen language.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locale, err := types.ParseLocale(lang)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			cats, err := st.PublicMenu(cmd.Context(), locale)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"lang": locale, "categories": cats})
			}

			out := cmd.OutOrStdout()
			for i, c := range cats {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, orID(c.Title, c.ID))
				for _, d := range c.Dishes {
					var marks []string
					if d.Vegetarian {
						marks = append(marks, "V")
					}
					if d.ChefsPick {
						marks = append(marks, "chef")
					}
					if d.SoldOut {
						marks = append(marks, "sold out")
					}
					line := fmt.Sprintf("  %-40s %8s", orID(d.Title, d.ID), formatPrice(d.PriceMinor))
					if len(marks) > 0 {
						line += "  [" + strings.Join(marks, ", ") + "]"
					}
					fmt.Fprintln(out, line)
					for _, v := range d.PriceVariants {
						fmt.Fprintf(out, "    %-38s %8s\n", v.Label, formatPrice(v.PriceMinor))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", string(types.DefaultLocale), "language: ka, en or ru")
	return cmd
}

func orID(title, id string) string {
	if title == "" {
		return "(" + id + ")"
	}
	return title
}
