package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/use-agent/fahndung/models"
)

// causeWidth bounds the failure cause column in terminal cells.
const causeWidth = 72

// printReport renders one table row per adapter outcome followed by the
// item failures, if any.
func printReport(w io.Writer, r *models.SessionReport) {
	fmt.Fprintf(w, "session %s (%s): %s in %s\n", r.ID, r.Kind, r.State, r.FinishedAt.Sub(r.StartedAt).Round(time.Second))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Source", "Termination", "Pages", "Attempted", "Persisted", "Conflicts", "Failed", "Duration"})
	for _, o := range r.Outcomes {
		term := string(o.Termination)
		if o.Error != nil {
			term += " (" + o.Error.Code + ")"
		}
		t.AppendRow(table.Row{
			o.Source, term, o.Pages, o.Attempted, o.Persisted, o.Conflicts, len(o.Failed),
			o.Duration.Round(time.Millisecond),
		})
	}
	persisted, conflicts, failed := r.Totals()
	t.AppendFooter(table.Row{"Total", "", "", "", persisted, conflicts, failed, ""})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if failed == 0 {
		return
	}
	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.AppendHeader(table.Row{"Source", "URL", "Code", "Cause"})
	for _, o := range r.Outcomes {
		for _, f := range o.Failed {
			ft.AppendRow(table.Row{o.Source, f.URL, f.Code, runewidth.Truncate(f.Cause, causeWidth, "…")})
		}
	}
	ft.SetStyle(table.StyleRounded)
	ft.Render()
}
