package cli

import (
	"sort"
	"strings"

	"github.com/leaderreps/testcenter/internal/errors"
)

// commandFlags parses a command's own flags. Flags may appear anywhere
// among the positional arguments, in the forms --name=value, --name value
// and --name for booleans. Everything after "--" is positional.
type commandFlags struct {
	command string
	values  map[string]*string
	bools   map[string]*bool
}

func newCommandFlags(command string) *commandFlags {
	return &commandFlags{
		command: command,
		values:  make(map[string]*string),
		bools:   make(map[string]*bool),
	}
}

// String registers a flag taking a value.
func (f *commandFlags) String(name string, p *string) {
	f.values[name] = p
}

// Bool registers a boolean flag.
func (f *commandFlags) Bool(name string, p *bool) {
	f.bools[name] = p
}

// Parse sets the registered flags and returns the positional arguments.
// A lone "-" is positional (stdin).
func (f *commandFlags) Parse(args []string) ([]string, error) {
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if p, ok := f.values[name]; ok {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, errors.Usagef(f.command, "%s requires a value", name)
				}
				i++
				value = args[i]
			}
			*p = value
			continue
		}
		if p, ok := f.bools[name]; ok {
			if hasValue {
				return nil, errors.Usagef(f.command, "%s does not take a value", name)
			}
			*p = true
			continue
		}

		return nil, errors.Usagef(f.command, "unknown flag: %s (known: %s)", name, strings.Join(f.names(), ", "))
	}

	return positional, nil
}

func (f *commandFlags) names() []string {
	names := make([]string, 0, len(f.values)+len(f.bools))
	for name := range f.values {
		names = append(names, name)
	}
	for name := range f.bools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
