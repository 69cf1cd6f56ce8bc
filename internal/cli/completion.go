package cli

import (
	"fmt"
	"sort"
	"strings"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	shell := ""
	alias := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			out.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return 2
		case strings.HasPrefix(arg, "-"):
			out.ErrorPrefix("completion: unknown flag: %s", arg)
			printCompletionUsage()
			return 2
		default:
			if shell != "" {
				out.ErrorPrefix("completion: unexpected argument: %s", arg)
				return 2
			}
			shell = arg
		}
	}

	if shell == "" {
		out.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		printCompletionUsage()
		return 2
	}

	cmdName := "testcenter"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		out.Print("%s", generateBashCompletion(cmdName))
	case "zsh":
		out.Print("%s", generateZshCompletion(cmdName))
	case "fish":
		out.Print("%s", generateFishCompletion(cmdName))
	default:
		out.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return 2
	}

	return 0
}

func printCompletionUsage() {
	w := out

	w.HelpTitle("testcenter completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("testcenter completion <shell> [--alias=<name>]")

	w.HelpSection("Arguments:")
	w.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", 10)

	w.HelpSection("Options:")
	w.HelpFlag("--alias=<name>", "Generate completion for command alias", 14)
	w.HelpFlag("-h, --help", "Show this help", 14)

	w.HelpSection("Installation:")
	w.Println("  Bash:  eval \"$(testcenter completion bash)\"")
	w.Println("  Zsh:   eval \"$(testcenter completion zsh)\"")
	w.Println("  Fish:  testcenter completion fish | source")
	w.Println("")
}

// commandDescriptions lists the built-in commands for completion.
var commandDescriptions = map[string]string{
	"parse":      "Parse test output and record the run",
	"history":    "List recent test runs",
	"show":       "Show a test run",
	"watch":      "Parse a results file whenever it changes",
	"config":     "Configuration utilities",
	"completion": "Generate shell completion",
	"version":    "Show version information",
	"help":       "Show help",
}

// builtinCommands returns the built-in CLI commands, sorted.
func builtinCommands() []string {
	cmds := make([]string, 0, len(commandDescriptions))
	for cmd := range commandDescriptions {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// globalFlags returns the global CLI flags.
func globalFlags() []string {
	return []string{
		"--quiet",
		"--verbose",
		"--no-color",
		"--config",
		"--store",
		"--help",
		"--version",
	}
}

// commandFlagsFor returns the flags a command accepts.
func commandFlagsFor(cmd string) []string {
	switch cmd {
	case "parse":
		return []string{"--env", "--format", "--output", "--no-save", "--metrics-file", "--fail-on-failures"}
	case "watch":
		return []string{"--env", "--format", "--output", "--no-save", "--metrics-file"}
	case "history":
		return []string{"--output"}
	case "show":
		return []string{"--status", "--output"}
	}
	return nil
}

func generateBashCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	var caseArms strings.Builder
	for _, cmd := range []string{"parse", "watch", "history", "show"} {
		fmt.Fprintf(&caseArms, "        %s) cmd_flags=%q ;;\n", cmd, strings.Join(commandFlagsFor(cmd), " "))
	}

	return fmt.Sprintf(`# testcenter bash completion
# Add to ~/.bashrc: eval "$(testcenter completion bash)"

%s() {
    local cur prev words cword
    _init_completion -n = || return

    local commands="%s"
    local flags="%s"

    case "${cur}" in
        --format=*)
            COMPREPLY=($(compgen -W "auto list json" -- "${cur#*=}"))
            return
            ;;
        --output=*)
            COMPREPLY=($(compgen -W "text table json yaml" -- "${cur#*=}"))
            return
            ;;
        --status=*)
            COMPREPLY=($(compgen -W "all passed failed skipped" -- "${cur#*=}"))
            return
            ;;
    esac

    case "${prev}" in
        config)
            COMPREPLY=($(compgen -W "validate show" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
    esac

    local cmd="" cmd_flags=""
    local word
    for word in "${words[@]:1:cword-1}"; do
        case "${word}" in
            -*) ;;
            *) cmd="${word}"; break ;;
        esac
    done
    case "${cmd}" in
%s    esac

    if [[ -z "${cmd}" ]]; then
        COMPREPLY=($(compgen -W "${commands} ${flags}" -- "${cur}"))
    elif [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "${cmd_flags} ${flags}" -- "${cur}"))
    else
        _filedir
    fi
}

complete -F %s %s
`, funcName, strings.Join(builtinCommands(), " "), strings.Join(globalFlags(), " "), caseArms.String(), funcName, cmdName)
}

func generateZshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var commands strings.Builder
	for _, cmd := range builtinCommands() {
		fmt.Fprintf(&commands, "        '%s:%s'\n", cmd, commandDescriptions[cmd])
	}

	return fmt.Sprintf(`#compdef %s
# testcenter zsh completion
# Add to ~/.zshrc: eval "$(testcenter completion zsh)"

%s() {
    local -a commands flags

    commands=(
%s    )

    flags=(
        '(-q --quiet)'{-q,--quiet}'[Minimal output]'
        '(-v --verbose)'{-v,--verbose}'[Maximum detail]'
        '--no-color[Disable colored output]'
        '--config=[Config file]:file:_files'
        '--store=[History directory]:directory:_files -/'
        '--help[Show help]'
        '--version[Show version]'
    )

    if (( CURRENT == 2 )); then
        _describe -t commands 'command' commands
        _arguments -s $flags[@]
        return
    fi

    case "${words[2]}" in
        parse|watch)
            _arguments -s $flags[@] \
                '--env=[Environment]:env:' \
                '--format=[Input format]:format:(auto list json)' \
                '--output=[Output format]:format:(text json yaml)' \
                '--no-save[Do not record the run]' \
                '--metrics-file=[Prometheus textfile]:file:_files' \
                '--fail-on-failures[Exit 1 when any test failed]' \
                '*:file:_files'
            ;;
        history)
            _arguments -s $flags[@] '--output=[Output format]:format:(table json yaml)'
            ;;
        show)
            _arguments -s $flags[@] \
                '--status=[Status filter]:status:(all passed failed skipped)' \
                '--output=[Output format]:format:(text json yaml)'
            ;;
        config)
            _values 'subcommand' 'validate[Validate configuration]' 'show[Print resolved configuration]'
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        *)
            _arguments -s $flags[@]
            ;;
    esac
}

compdef %s %s
`, cmdName, funcName, commands.String(), funcName, cmdName)
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`# testcenter fish completion
# Add to config: testcenter completion fish | source

complete -c %s -f

`, cmdName))

	for _, cmd := range builtinCommands() {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, cmd, commandDescriptions[cmd]))
	}

	sb.WriteString("\n# Global flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -s q -l quiet -d 'Minimal output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s v -l verbose -d 'Maximum detail'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l no-color -d 'Disable colored output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l config -r -F -d 'Config file'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l store -r -a '(__fish_complete_directories)' -d 'History directory'\n", cmdName))

	sb.WriteString("\n# parse and watch\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch' -F\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch' -l env -x -d 'Environment'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch' -l format -xa 'auto list json' -d 'Input format'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch show' -l output -xa 'text json yaml' -d 'Output format'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch' -l no-save -d 'Do not record the run'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse watch' -l metrics-file -r -F -d 'Prometheus textfile'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from parse' -l fail-on-failures -d 'Exit 1 when any test failed'\n", cmdName))

	sb.WriteString("\n# history and show\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from history' -l output -xa 'table json yaml' -d 'Output format'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from show' -l status -xa 'all passed failed skipped' -d 'Status filter'\n", cmdName))

	sb.WriteString("\n# subcommands\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from config' -a 'validate show'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n", cmdName))

	return sb.String()
}
