package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"togglkit/internal/app"
)

func newCurrentCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the running time entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := app.NewTogglClient(g.cfg.Toggl, g.log)
			entry, err := client.GetCurrentTimeEntry(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if entry == nil {
				fmt.Fprintln(out, "no running time entry")
				return nil
			}
			fmt.Fprintf(out, "%d\t%s\tsince %s (%s)\n",
				entry.ID,
				entry.Description,
				entry.Start.Local().Format(time.DateTime),
				time.Since(entry.Start).Truncate(time.Second),
			)
			return nil
		},
	}
}
