package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/backstory/internal/catalog"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file",
		Long:  `Load a JSON, YAML or TOML catalog file and report every structural problem in it. Exits non-zero when the catalog is invalid.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintln(out, p.String())
					}
					return fmt.Errorf("%s: %d problems", args[0], len(verr.Problems))
				}
				return err
			}

			total := 0
			for _, c := range cat.Stats() {
				total += c.Entries
			}
			a.log.Debug("catalog validated", "path", args[0], "races", len(cat.Races()))
			fmt.Fprintf(out, "%s: ok (%d entries)\n", args[0], total)
			return nil
		},
	}
}
