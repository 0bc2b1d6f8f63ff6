package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chero-kobuleti/menu/internal/store"
	"github.com/chero-kobuleti/menu/pkg/types"
)

// openStore returns a store over the resolved data directory.
func (a *app) openStore() (*store.Store, error) {
	return store.New(a.cfg.Store, a.log)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// requireYes refuses a destructive action unless --yes was given.
func requireYes(cmd *cobra.Command, action string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("%w: %s (rerun with --yes)", types.ErrConfirmationRequired, action)
	}
	return nil
}

func addYesFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("yes", false, "confirm the destructive action")
}

// formatPrice renders minor units as lari, 1890 as "18.90".
func formatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// localeFlags registers --ka, --en and --ru for one localized field.
type localeFlags struct {
	ka, en, ru string
}

func (l *localeFlags) register(cmd *cobra.Command, prefix, what string) {
	name := func(loc string) string {
		if prefix == "" {
			return loc
		}
		return prefix + "-" + loc
	}
	cmd.Flags().StringVar(&l.ka, name("ka"), "", what+" in Georgian")
	cmd.Flags().StringVar(&l.en, name("en"), "", what+" in English")
	cmd.Flags().StringVar(&l.ru, name("ru"), "", what+" in Russian")
}

func (l *localeFlags) text() types.LocaleText {
	return types.LocaleText{
		KA: strings.TrimSpace(l.ka),
		EN: strings.TrimSpace(l.en),
		RU: strings.TrimSpace(l.ru),
	}
}

// optionalInt returns a pointer to the flag value when the flag was set.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	n, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &n
}

func statusArg(s string) (types.Status, error) {
	return types.ParseStatus(strings.ToLower(strings.TrimSpace(s)))
}
