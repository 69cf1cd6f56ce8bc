package cli

import (
	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/report"
)

// cmdHistory lists the recorded runs, newest first.
func cmdHistory(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printHistoryUsage()
		return 0
	}

	format := report.FormatTable
	flags := newCommandFlags("history")
	flags.String("--output", &format)
	positional, err := flags.Parse(args)
	if err != nil {
		return fail(err)
	}
	if len(positional) > 0 {
		return fail(errors.Usagef("history", "unexpected argument %q", positional[0]))
	}
	if err := report.CheckFormat(format, report.HistoryFormats); err != nil {
		return fail(errors.Usagef("history", "--output: %v", err))
	}

	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	sess.printWarnings()

	ctx, cancel := storeContext()
	defer cancel()
	h, err := sess.recorder().Load(ctx)
	if err != nil {
		return fail(storeError(err, "load history"))
	}

	if err := report.History(out, h.Entries(), format); err != nil {
		return fail(errors.Wrap(err, "render history"))
	}
	return 0
}

func printHistoryUsage() {
	w := out

	w.HelpTitle("testcenter history - list recent test runs")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter history [options]")

	w.HelpSection("Options:")
	w.HelpFlag("--output=<format>", "Output format: table, json, yaml (default: table)", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)

	w.HelpSection("Examples:")
	w.HelpExample("testcenter history", "Show the last 10 runs")
	w.HelpExample("testcenter history --output=yaml", "Export the history as YAML")
	w.Println("")
}
