package cli

import (
	"strings"

	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/report"
	"github.com/leaderreps/testcenter/internal/testparser"
)

// parseOptions holds the flags of the parse and watch commands.
type parseOptions struct {
	env            string
	format         string
	output         string
	metricsFile    string
	noSave         bool
	failOnFailures bool
}

func (p *parseOptions) register(f *commandFlags) {
	f.String("--env", &p.env)
	f.String("--format", &p.format)
	f.String("--output", &p.output)
	f.String("--metrics-file", &p.metricsFile)
	f.Bool("--no-save", &p.noSave)
}

// resolve fills unset options from the session configuration.
func (p *parseOptions) resolve(command string, s *session) (string, error) {
	if p.format == "" {
		p.format = s.cfg.Parse.Format
	}
	if p.output == "" {
		p.output = s.cfg.Output.Format
	}
	if p.metricsFile == "" {
		p.metricsFile = s.cfg.Metrics.File
	}
	if err := report.CheckFormat(p.output, report.ResultFormats); err != nil {
		return "", errors.Usagef(command, "--output: %v", err)
	}
	registry := testparser.NewRegistry(nil)
	if !strings.EqualFold(p.format, testparser.FormatAuto) && registry.GetParser(p.format) == nil {
		return "", errors.Usagef(command, "--format: unknown input format %q (expected one of %s)",
			p.format, strings.Join(registry.Formats(), ", "))
	}
	return s.resolveEnv(command, p.env)
}

// cmdParse parses runner output, prints it and records it.
func cmdParse(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printParseUsage()
		return 0
	}

	var p parseOptions
	flags := newCommandFlags("parse")
	p.register(flags)
	flags.Bool("--fail-on-failures", &p.failOnFailures)
	positional, err := flags.Parse(args)
	if err != nil {
		return fail(err)
	}
	if len(positional) > 1 {
		return fail(errors.Usagef("parse", "expected at most one input file, got %d", len(positional)))
	}
	input := ""
	if len(positional) == 1 {
		input = positional[0]
	}

	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	sess.printWarnings()

	env, err := p.resolve("parse", sess)
	if err != nil {
		return fail(err)
	}

	data, err := readInput(input)
	if err != nil {
		return fail(err)
	}

	res := parseOutput(p.format, string(data))

	id := ""
	if !p.noSave {
		id = recordRun(sess, res, env)
	}

	if err := report.Result(out, &res, p.output, report.Options{ID: id, Env: env}); err != nil {
		return fail(errors.Wrap(err, "render result"))
	}
	confirmRecorded(sess, id, env, p.output)

	if p.metricsFile != "" {
		if err := report.WriteMetrics(p.metricsFile, &res, env); err != nil {
			return fail(errors.Wrap(err, "export metrics"))
		}
		out.Debug("metrics written to %s", p.metricsFile)
	}

	if p.failOnFailures && res.Summary.Failed > 0 {
		return errors.TestsFailed(res.Summary.Failed).ExitCode()
	}
	return 0
}

// parseOutput runs the parser for format over text. format was validated
// by parseOptions.resolve, so Resolve never returns nil here.
func parseOutput(format, text string) testparser.RunResult {
	parser := testparser.NewRegistry(nil).Resolve(format, text)
	out.Debug("parsing with the %s parser", parser.Name())
	return parser.Parse(text)
}

// recordRun saves res and remembers env. A failed save has already been
// logged by the recorder; the command carries on without an id.
func recordRun(sess *session, res testparser.RunResult, env string) string {
	ctx, cancel := storeContext()
	defer cancel()

	entry, err := sess.recorder().Record(ctx, res, env)
	if err != nil {
		return ""
	}
	rememberEnv(env)
	return entry.ID
}

// confirmRecorded tells the user where a run went. Machine-readable output
// stays a single document, so only text output gets the line.
func confirmRecorded(sess *session, id, env, format string) {
	if id == "" || format != report.FormatText {
		return
	}
	out.Success("Recorded run %s (%s) in %s.", report.ShortID(id), env, sess.storeDir)
}

func printParseUsage() {
	w := out

	w.HelpTitle("testcenter parse - parse test runner output")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter parse [file|-] [options]")

	w.HelpSection("Description:")
	w.Println("  Reads Playwright list reporter output or a JSON report from a file or")
	w.Println("  stdin, prints the run summary and every test, and records the run in")
	w.Println("  the history (the last 10 runs are kept).")

	w.HelpSection("Options:")
	w.HelpFlag("--env=<env>", "Environment to record the run against", helpFlagWidthGlobal)
	w.HelpFlag("--format=<format>", "Input format: auto, list, json (default: auto)", helpFlagWidthGlobal)
	w.HelpFlag("--output=<format>", "Output format: text, json, yaml (default: text)", helpFlagWidthGlobal)
	w.HelpFlag("--no-save", "Do not record the run", helpFlagWidthGlobal)
	w.HelpFlag("--metrics-file=<path>", "Write Prometheus textfile metrics", helpFlagWidthGlobal)
	w.HelpFlag("--fail-on-failures", "Exit 1 when any test failed", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)

	w.HelpSection("Examples:")
	w.HelpExample("npx playwright test --reporter=list | testcenter parse", "Parse from stdin")
	w.HelpExample("testcenter parse results.txt --env=test", "Parse a file for the test environment")
	w.HelpExample("testcenter parse report.json --output=json --no-save", "Convert a JSON report without recording")
	w.Println("")
}
