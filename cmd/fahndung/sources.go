package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/store"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := newRegistry(config.Load(), slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Source", "Pagination", "Ordering", "Retention", "Threshold", "Browser"})
			for _, a := range registry.All() {
				d := a.Source()
				threshold := "-"
				if d.EarlyStop() {
					threshold = fmt.Sprint(d.RecrawlThreshold)
				}
				t.AppendRow(table.Row{
					d.Name(),
					d.Pagination,
					d.Ordering,
					fmt.Sprintf("%dd", int(d.Retention.Hours()/24)),
					threshold,
					d.NeedsBrowser,
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "Total", len(registry.All())})
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			db, err := store.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			pg := store.NewPostgres(db)
			defer pg.Close()

			if err := pg.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "schema applied")
			return nil
		},
	}
}
