package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/backstory/internal/chronicle"
	"github.com/talgya/backstory/internal/persistence"
	"github.com/talgya/backstory/internal/social"
)

type generateOptions struct {
	seed   int64
	realms int
	years  int
	dbPath string
	serial bool
	noSave bool
	output string
}

func newGenerateCommand(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a chronicle",
		Long:  `Generate a world map, seat realms on it and write each realm's history. The chronicle is printed and saved to the SQLite database.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts)
		},
	}

	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "World seed (default from BACKSTORY_SEED)")
	cmd.Flags().IntVarP(&opts.realms, "realms", "n", 0, "Number of realms (default from BACKSTORY_REALMS)")
	cmd.Flags().IntVar(&opts.years, "years", 0, "Age of the oldest realm (default from BACKSTORY_YEARS)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default from BACKSTORY_DB_PATH)")
	cmd.Flags().BoolVar(&opts.serial, "serial", false, "Write realm histories one at a time")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Print the chronicle without saving it")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json, none)")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts *generateOptions) error {
	switch opts.output {
	case "text", "json", "none":
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	flags := cmd.Flags()
	cfg := chronicle.DefaultConfig()
	cfg.Seed = a.cfg.Seed
	cfg.Realms = a.cfg.Realms
	cfg.Years = a.cfg.Years
	dbPath := a.cfg.DBPath
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("realms") {
		cfg.Realms = opts.realms
	}
	if flags.Changed("years") {
		cfg.Years = opts.years
	}
	if flags.Changed("db") {
		dbPath = opts.dbPath
	}
	cfg.Parallel = !opts.serial

	cat, err := a.catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	c, err := chronicle.NewGenerator(cat, cfg, a.log).Generate(cmd.Context())
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if !opts.noSave {
		if err := save(dbPath, c); err != nil {
			return err
		}
		a.log.Info("chronicle stored", "path", dbPath)
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Seed      int64             `json:"seed"`
			Realms    []*social.Realm   `json:"realms"`
			Dynasties []*social.Dynasty `json:"dynasties"`
			Events    []chronicle.Event `json:"events"`
		}{c.Seed, c.Realms, c.Dynasties, c.Events})
	case "none":
		return nil
	default:
		return printChronicle(out, c)
	}
}

func save(path string, c *chronicle.Chronicle) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveChronicle(c)
}

func printChronicle(w io.Writer, c *chronicle.Chronicle) error {
	for i, r := range c.Realms {
		d := c.Dynasties[i]
		fmt.Fprintf(w, "%s (%s, %s) founded in year %d\n", r.Name, r.Race, r.Terrain, r.FoundedYear)
		fmt.Fprintf(w, "  Ruled by %s, %d generations", d.Name, d.Generations())
		if head := d.Head(); head != nil {
			fmt.Fprintf(w, "; now %s %s", r.RulerTitle, head.FullName())
		}
		fmt.Fprintln(w)
		for _, e := range c.EventsOf(r.ID) {
			fmt.Fprintf(w, "  %5d  %s: %s\n", e.Year, e.Title, e.Description)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
