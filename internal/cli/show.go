package cli

import (
	stderrors "errors"

	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/history"
	"github.com/leaderreps/testcenter/internal/report"
	"github.com/leaderreps/testcenter/internal/testparser"
)

// statusFilters maps --status values to test statuses.
var statusFilters = map[string]testparser.Status{
	"all":     "",
	"passed":  testparser.StatusPassed,
	"failed":  testparser.StatusFailed,
	"skipped": testparser.StatusSkipped,
}

// cmdShow prints the current run, or the recorded run with the given id.
func cmdShow(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printShowUsage()
		return 0
	}

	status, format := "all", ""
	flags := newCommandFlags("show")
	flags.String("--status", &status)
	flags.String("--output", &format)
	positional, err := flags.Parse(args)
	if err != nil {
		return fail(err)
	}
	if len(positional) > 1 {
		return fail(errors.Usagef("show", "expected at most one run id, got %d", len(positional)))
	}
	filter, ok := statusFilters[status]
	if !ok {
		return fail(errors.Usagef("show", "--status: unknown status %q (expected all, passed, failed, skipped)", status))
	}

	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	sess.printWarnings()

	if format == "" {
		format = sess.cfg.Output.Format
	}
	if err := report.CheckFormat(format, report.ResultFormats); err != nil {
		return fail(errors.Usagef("show", "--output: %v", err))
	}

	var entry *history.Entry
	if len(positional) == 1 {
		entry, err = findRun(sess, positional[0])
	} else {
		entry, err = currentRun(sess)
	}
	if err != nil {
		return fail(err)
	}

	title := "Current Run"
	if len(positional) == 1 {
		title = "Test Run"
	}
	renderOpts := report.Options{Title: title, ID: entry.ID, Env: entry.Env, Status: filter}
	if err := report.Result(out, &entry.Result, format, renderOpts); err != nil {
		return fail(errors.Wrap(err, "render result"))
	}
	return 0
}

func currentRun(sess *session) (*history.Entry, error) {
	ctx, cancel := storeContext()
	defer cancel()

	entry, err := sess.recorder().Current(ctx)
	if err != nil {
		return nil, storeError(err, "load current run")
	}
	if entry == nil {
		return nil, errors.New("no test run recorded yet; run 'testcenter parse' first")
	}
	return entry, nil
}

func findRun(sess *session, ref string) (*history.Entry, error) {
	ctx, cancel := storeContext()
	defer cancel()

	h, err := sess.recorder().Load(ctx)
	if err != nil {
		return nil, storeError(err, "load history")
	}
	entry, found, err := h.Find(ref)
	if stderrors.Is(err, history.ErrAmbiguousID) {
		return nil, errors.Usagef("show", "%v", err)
	}
	if !found {
		return nil, errors.NotFound("run", ref)
	}
	return &entry, nil
}

func printShowUsage() {
	w := out

	w.HelpTitle("testcenter show - show a test run")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter show [id] [options]")

	w.HelpSection("Description:")
	w.Println("  Without an id, shows the most recently recorded run. An id may be")
	w.Println("  shortened to its last characters as printed by 'testcenter history'.")

	w.HelpSection("Options:")
	w.HelpFlag("--status=<status>", "Only list tests with this status: all, passed, failed, skipped", helpFlagWidthGlobal)
	w.HelpFlag("--output=<format>", "Output format: text, json, yaml", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)

	w.HelpSection("Examples:")
	w.HelpExample("testcenter show", "Show the current run")
	w.HelpExample("testcenter show b302099a8057 --status=failed", "Show failed tests of a recorded run")
	w.Println("")
}
