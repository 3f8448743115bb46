package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talgya/backstory/internal/catalog"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Count catalog entries per category",
		Long:  `Print how many keys and entries each catalog category holds. Without a file, the embedded catalog (plus any data dir overlay) is counted.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				err error
			)
			if len(args) == 1 {
				cat, err = catalog.LoadFile(args[0])
			} else {
				cat, err = a.catalog()
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tKEYS\tENTRIES")
			total := 0
			for _, c := range cat.Stats() {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Category, c.Keys, c.Entries)
				total += c.Entries
			}
			fmt.Fprintf(tw, "total\t\t%d\n", total)
			fmt.Fprintf(tw, "races\t%d\t\n", len(cat.Races()))
			return tw.Flush()
		},
	}
}
