package cli

import (
	"fmt"
	"strings"

	"github.com/leaderreps/testcenter/internal/errors"
)

// cmdConfig handles configuration utilities.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 {
		out.ErrorPrefix("config: subcommand required (validate, show)")
		return errors.ExitConfigError
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	case "show":
		return cmdConfigShow(opts)
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		return errors.ExitConfigError
	}
}

func cmdConfigValidate(opts *GlobalOptions) int {
	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	if sess.configPath == "" {
		out.ErrorPrefix("config: no .testcenter.json found in the working directory or any parent")
		return errors.ExitConfigError
	}

	sess.printWarnings()

	out.ValidationSuccess("Configuration is valid.")
	out.SummaryItem("File", sess.configPath)
	out.SummaryItem("Default env", sess.cfg.Env)
	if len(sess.warnings) > 0 {
		out.SummaryItem("Warnings", fmt.Sprintf("%d", len(sess.warnings)))
	}
	out.SummarySectionLabel("Environments:")
	out.List(sess.cfg.Environments)
	return 0
}

func cmdConfigShow(opts *GlobalOptions) int {
	sess, err := loadSession(opts)
	if err != nil {
		return fail(err)
	}
	sess.printWarnings()

	env, err := sess.resolveEnv("config", "")
	if err != nil {
		return fail(err)
	}

	source := sess.configPath
	if source == "" {
		source = "(defaults)"
	}
	metrics := sess.cfg.Metrics.File
	if metrics == "" {
		metrics = "(disabled)"
	}

	out.Table([]string{"Key", "Value"}, [][]string{
		{"config", source},
		{"env", env},
		{"environments", strings.Join(sess.cfg.Environments, ", ")},
		{"store.dir", sess.storeDir},
		{"parse.format", sess.cfg.Parse.Format},
		{"output.format", sess.cfg.Output.Format},
		{"metrics.file", metrics},
	})
	return 0
}

func printConfigUsage() {
	w := out

	w.HelpTitle("testcenter config - configuration utilities")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter config <subcommand>")

	w.HelpSection("Subcommands:")
	w.HelpCommand("validate", "Validate the project configuration", helpFlagWidthShort)
	w.HelpCommand("show", "Print the resolved configuration", helpFlagWidthShort)

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthShort)

	w.HelpSection("Examples:")
	w.HelpExample("testcenter config validate", "Validate .testcenter.json")
	w.HelpExample("TESTCENTER_ENV=dev testcenter config show", "Show the settings a parse would use")
	w.Println("")
}
