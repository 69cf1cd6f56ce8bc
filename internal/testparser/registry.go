package testparser

import (
	"encoding/json"
	"sort"
	"strings"
)

// FormatAuto selects a parser by looking at the output.
const FormatAuto = "auto"

// Registry maps output format names to their parsers.
type Registry struct {
	parsers map[string]Parser
	console Parser
	json    Parser
}

// NewRegistry creates a new parser registry with all built-in parsers.
// A nil clock stamps results with the current UTC time.
func NewRegistry(now Clock) *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
		console: &ConsoleParser{Now: now},
		json:    &JSONReportParser{Now: now},
	}

	for _, name := range []string{"list", "line", "console", "text"} {
		r.RegisterParser(name, r.console)
	}
	r.RegisterParser("json", r.json)
	r.RegisterParser("playwright-json", r.json)

	return r
}

// GetParser returns the parser for the given format name.
// Returns nil if no parser is found.
func (r *Registry) GetParser(format string) Parser {
	return r.parsers[strings.ToLower(strings.TrimSpace(format))]
}

// Resolve returns the parser for format, detecting it from output when
// format is empty or "auto". Returns nil for an unknown format.
func (r *Registry) Resolve(format, output string) Parser {
	if format == "" || strings.EqualFold(format, FormatAuto) {
		return r.Detect(output)
	}
	return r.GetParser(format)
}

// Detect picks the JSON report parser for a JSON object and the console
// parser for everything else.
func (r *Registry) Detect(output string) Parser {
	trimmed := strings.TrimSpace(output)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return r.json
	}
	return r.console
}

// RegisterParser adds or replaces the parser for a format name. Names are
// case-insensitive.
func (r *Registry) RegisterParser(format string, parser Parser) {
	r.parsers[strings.ToLower(format)] = parser
}

// Formats returns the registered format names, sorted, including "auto".
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.parsers)+1)
	formats = append(formats, FormatAuto)
	for name := range r.parsers {
		formats = append(formats, name)
	}
	sort.Strings(formats[1:])
	return formats
}
