package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/chero-kobuleti/menu"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the menuctl version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "menuctl %s\nmodule: %s\n", version, modulePath)
			return nil
		},
	}
}
