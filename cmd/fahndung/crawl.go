package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/session"
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl session in the foreground",
	}
	cmd.AddCommand(crawlKindCmd(session.KindPersons), crawlKindCmd(session.KindNews))
	return cmd
}

func crawlKindCmd(kind string) *cobra.Command {
	var req models.CrawlRequest

	cmd := &cobra.Command{
		Use:   kind,
		Short: "Crawl every " + kind + " source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jurisdictions, types, err := req.Parse()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.service.Crawl(ctx, kind, session.Request{
				Jurisdictions: jurisdictions,
				Types:         types,
			})
			if err != nil {
				return err
			}
			printReport(os.Stdout, report)
			if report.State == models.SessionPartiallyFailed {
				return fmt.Errorf("session %s finished with failures", report.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&req.Jurisdictions, "jurisdiction", "j", nil, `limit to jurisdictions, e.g. "Berlin"`)
	if kind == session.KindPersons {
		cmd.Flags().StringSliceVarP(&req.Types, "type", "t", nil, `limit to "wanted" or "missing"`)
	}
	return cmd
}

func newRetentionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retention",
		Short: "Delete stored records past their retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.service.RunRetention(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "session %s: %s, %d records deleted\n", report.ID, report.State, report.Deleted)
			if report.Error != nil {
				return fmt.Errorf("%s: %s", report.Error.Code, report.Error.Message)
			}
			return nil
		},
	}
}
