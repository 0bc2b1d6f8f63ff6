package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/internal/logger"
	"github.com/chero-kobuleti/menu/internal/paths"
)

// annotationNoSetup marks commands that need neither configuration nor a
// data directory.
const annotationNoSetup = "menuctl/no-setup"

// app carries global flag values and the state loaded before every
// subcommand runs.
type app struct {
	configDir string
	dataDir   string
	jsonOut   bool
	envFile   string

	cfg *settings
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "menuctl",
		Short:         "Manage the restaurant menu documents",
		Long:          "menuctl edits the category and dish documents of a menu data directory,\nkeeps timestamped backups of every change and serves the menu over HTTP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoSetup] != "" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/chero-menu)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/data)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before configuration (ignored when missing)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newCategoriesCmd(a),
		newDishesCmd(a),
		newMenuCmd(a),
		newBackupsCmd(a),
		newImportCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

// setup loads the dotenv file, the configuration and the logger.
func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return err
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	cfg, err := newSettings(v, a.dataDir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logger.New(cfg.Log)
	return err
}
