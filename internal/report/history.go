package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leaderreps/testcenter/internal/history"
	"github.com/leaderreps/testcenter/internal/output"
	"github.com/leaderreps/testcenter/internal/testparser"
)

// timeLayout is used for run timestamps in tables.
const timeLayout = "2006-01-02 15:04:05"

// History renders entries, newest first, in the given format.
func History(w *output.Writer, entries []history.Entry, format string) error {
	switch format {
	case FormatTable:
		if len(entries) == 0 {
			w.Info("No test runs recorded yet.")
			w.Hint("Run 'testcenter parse <file>' to record one.")
			return nil
		}
		HistoryTable(w.Out(), entries, w.Color())
		return nil
	case FormatJSON, FormatYAML:
		if entries == nil {
			entries = []history.Entry{}
		}
		return Encode(w.Out(), entries, format)
	default:
		return CheckFormat(format, HistoryFormats)
	}
}

// HistoryTable writes a table with one row per run and a footer totalling
// all runs. With color enabled the table is tinted by the latest run's
// status.
func HistoryTable(out io.Writer, entries []history.Entry, color bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Test Run History")
	t.AppendHeader(table.Row{"ID", "Env", "Time", "Status", "Passed", "Failed", "Skipped", "Total", "Pass Rate", "Duration"})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
	})

	var total testparser.Summary
	for _, e := range entries {
		res := e.Result
		t.AppendRow(table.Row{
			ShortID(e.ID),
			e.Env,
			formatTime(res.Timestamp),
			StatusLabel(res.Status()),
			res.Summary.Passed,
			res.Summary.Failed,
			res.Summary.Skipped,
			res.Summary.Total,
			fmt.Sprintf("%d%%", res.PassRate()),
			res.Duration,
		})
		total.Add(&res.Summary)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d run(s)", len(entries)), "", "", "",
		total.Passed, total.Failed, total.Skipped, total.Total,
		fmt.Sprintf("%d%%", passRate(total)), "",
	})

	t.SetStyle(historyStyle(entries, color))
	t.Render()
}

func historyStyle(entries []history.Entry, color bool) table.Style {
	if !color {
		return table.StyleLight
	}
	switch {
	case len(entries) == 0:
		return table.StyleColoredBlackOnYellowWhite
	case entries[0].Result.Status() == testparser.StatusFailed:
		return table.StyleColoredBlackOnRedWhite
	default:
		return table.StyleColoredBlackOnGreenWhite
	}
}

// ShortID returns the last 12 characters of a run id, the random tail of a
// UUIDv7. Shorter ids are returned unchanged.
func ShortID(id string) string {
	const n = 12
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(timeLayout)
}

func passRate(s testparser.Summary) int {
	r := testparser.RunResult{Summary: s}
	return r.PassRate()
}
