package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/backstory/internal/api"
	"github.com/talgya/backstory/internal/backstory"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/persistence"
	"github.com/talgya/backstory/internal/resolve"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port            int
		dbPath          string
		renderRate      int
		recencySubjects int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored chronicle over HTTP",
		Long:  `Serve the chronicle saved by generate as a read-only JSON API, plus an endpoint that renders fresh backstories from the catalog.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				dbPath = a.cfg.DBPath
			}
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			cat, err := a.catalog()
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			// Live requests draw from the OS entropy pool; only stored
			// chronicles need to be reproducible. Clients name their own
			// subjects, so the recency history is bounded.
			policy := resolve.NewRecencyAvoiding(resolve.DefaultRecencyWindow).LimitSubjects(recencySubjects)
			eng := backstory.New(cat, entropy.Crypto{},
				backstory.WithPolicy(policy),
				backstory.WithLogger(a.log),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &api.Server{DB: db, Engine: eng, Port: port, RenderRate: renderRate}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from BACKSTORY_DB_PATH)")
	cmd.Flags().IntVar(&renderRate, "render-rate", 120, "Render requests allowed per client per hour")
	cmd.Flags().IntVar(&recencySubjects, "recency-subjects", resolve.DefaultSubjectLimit, "Subjects whose recent picks the render endpoint remembers")
	return cmd
}
