// Package cli provides command-line interface functionality for testcenter.
package cli

import (
	"fmt"
	"strings"

	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		out.Println("testcenter %s", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "parse":
		return cmdParse(cmdArgs, opts)
	case "history":
		return cmdHistory(cmdArgs, opts)
	case "show":
		return cmdShow(cmdArgs, opts)
	case "watch":
		return cmdWatch(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	case "version":
		out.Println("testcenter %s", Version)
		return 0
	case "help":
		printUsage()
		return 0
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Errorln("Run 'testcenter help' for usage.")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet      bool
	Verbose    bool
	NoColor    bool
	ConfigPath string
	StoreDir   string
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Global flags may appear anywhere in the argument list, before or after
// the command. Everything after -- is passed through untouched.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--no-color":
			opts.NoColor = true
			i++
		case arg == "--config" || arg == "--store":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("%s requires a value", arg)
			}
			setPathFlag(opts, arg, args[i+1])
			i += 2
		case strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--store="):
			name, value, _ := strings.Cut(arg, "=")
			setPathFlag(opts, name, value)
			i++
		case arg == "--":
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}

	applyVerbosityToOutput(opts)

	return opts, remaining, nil
}

func setPathFlag(opts *GlobalOptions, name, value string) {
	if name == "--config" {
		opts.ConfigPath = value
	} else {
		opts.StoreDir = value
	}
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

func printUsage() {
	w := out

	w.HelpTitle("testcenter - parse end-to-end test output and track test runs")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter [flags] <command> [args]")

	w.HelpSection("Commands:")
	w.HelpCommand("parse [file]", "Parse test output, print the result and record it", 16)
	w.HelpCommand("history", "List recent test runs, newest first", 16)
	w.HelpCommand("show [id]", "Show the current run or a recorded run", 16)
	w.HelpCommand("watch <file>", "Re-parse and record a results file on every change", 16)
	w.HelpCommand("config validate", "Validate the project configuration", 16)
	w.HelpCommand("config show", "Print the resolved configuration", 16)
	w.HelpCommand("completion", "Generate shell completion (bash, zsh, fish)", 16)
	w.HelpCommand("version", "Show version information", 16)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("npx playwright test --reporter=list | testcenter parse", "Parse from stdin")
	w.HelpExample("testcenter parse results.json --env=dev", "Parse a JSON report for the dev environment")
	w.HelpExample("testcenter show --status=failed", "List the failed tests of the current run")
	w.HelpExample("testcenter history --output=json", "Export the run history")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", helpFlagWidthGlobal)
	w.HelpFlag("-v, --verbose", "Maximum detail", helpFlagWidthGlobal)
	w.HelpFlag("--no-color", "Disable colored output", helpFlagWidthGlobal)
	w.HelpFlag("--config=<path>", "Use this config file instead of searching", helpFlagWidthGlobal)
	w.HelpFlag("--store=<dir>", "Directory holding the run history", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)
	w.HelpFlag("--version", "Show version", helpFlagWidthGlobal)

	w.HelpSection("Environment:")
	w.HelpEnvVar(envVarEnv+"=<env>", "Environment to record runs against", 22)
	w.HelpEnvVar(envVarStore+"=<dir>", "Directory holding the run history", 22)
	w.HelpEnvVar(envNoColor+"=1", "Disable colored output", 22)
}
