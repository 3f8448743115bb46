// Command chronicle generates realm histories from a backstory template catalog.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/config"
	"github.com/talgya/backstory/internal/logging"
)

// app is the state shared by every subcommand.
type app struct {
	cfg *config.Config
	log *slog.Logger

	envFile   string
	logLevel  string
	logFormat string
	dataDir   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "chronicle",
		Short:        "Procedural realm histories from backstory templates",
		Long:         `Chronicle seats realms on a generated hex map and writes the history of each ruling line using a catalog of backstory templates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional dotenv file with BACKSTORY_* settings")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory with a backstory catalog overlay")

	root.AddCommand(
		newGenerateCommand(a),
		newValidateCommand(a),
		newStatsCommand(a),
		newServeCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg
	a.log = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return nil
}

// catalog loads the embedded catalog, overlaid with the data dir if one is set.
func (a *app) catalog() (*catalog.Catalog, error) {
	if a.cfg.DataDir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(a.cfg.DataDir)
}
