package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/report"
	"github.com/leaderreps/testcenter/internal/watch"
)

// cmdWatch re-parses and records a results file whenever it is written.
func cmdWatch(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printWatchUsage()
		return 0
	}

	var p parseOptions
	flags := newCommandFlags("watch")
	p.register(flags)
	positional, err := flags.Parse(args)
	if err != nil {
		return fail(err)
	}
	if len(positional) != 1 || positional[0] == "-" {
		return fail(errors.Usagef("watch", "expected exactly one results file"))
	}

	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	sess.printWarnings()

	env, err := p.resolve("watch", sess)
	if err != nil {
		return fail(err)
	}

	w, err := watch.New(positional[0], sess.logger)
	if err != nil {
		return fail(errors.WrapEnvironment(err, "watch"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out.Info("Watching %s (env %s). Press Ctrl+C to stop.", w.Path(), env)

	handler := func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res := parseOutput(p.format, string(data))

		id := ""
		if !p.noSave {
			id = recordRun(sess, res, env)
		}
		if err := report.Result(out, &res, p.output, report.Options{ID: id, Env: env}); err != nil {
			return err
		}
		confirmRecorded(sess, id, env, p.output)
		if p.metricsFile != "" {
			return report.WriteMetrics(p.metricsFile, &res, env)
		}
		return nil
	}

	if err := w.Run(ctx, handler); err != nil {
		return fail(errors.Wrap(err, "watch"))
	}
	out.Info("\nStopped watching.")
	return 0
}

func printWatchUsage() {
	w := out

	w.HelpTitle("testcenter watch - parse a results file whenever it changes")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter watch <file> [options]")

	w.HelpSection("Description:")
	w.Println("  Parses the file once if it exists, then again every time it is")
	w.Println("  written, recording each run. Stops on Ctrl+C.")

	w.HelpSection("Options:")
	w.HelpFlag("--env=<env>", "Environment to record runs against", helpFlagWidthGlobal)
	w.HelpFlag("--format=<format>", "Input format: auto, list, json (default: auto)", helpFlagWidthGlobal)
	w.HelpFlag("--output=<format>", "Output format: text, json, yaml (default: text)", helpFlagWidthGlobal)
	w.HelpFlag("--no-save", "Do not record runs", helpFlagWidthGlobal)
	w.HelpFlag("--metrics-file=<path>", "Rewrite Prometheus textfile metrics on every run", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)

	w.HelpSection("Examples:")
	w.HelpExample("testcenter watch test-results/results.json --env=dev", "Record every new JSON report")
	w.Println("")
}
