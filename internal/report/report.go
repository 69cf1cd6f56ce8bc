// Package report renders run results and histories for the terminal and
// for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/leaderreps/testcenter/internal/output"
	"github.com/leaderreps/testcenter/internal/testparser"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ResultFormats are the formats a single run renders to.
var ResultFormats = []string{FormatText, FormatJSON, FormatYAML}

// HistoryFormats are the formats a history renders to.
var HistoryFormats = []string{FormatTable, FormatJSON, FormatYAML}

var titleCase = cases.Title(language.English)

// Options controls how a run is rendered as text.
type Options struct {
	Title  string // defaults to "Test Run"
	ID     string
	Env    string
	Status testparser.Status // filters the test list; empty lists all
}

// CheckFormat returns an error unless format is one of allowed.
func CheckFormat(format string, allowed []string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("unknown output format %q (expected %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// Result renders res to w in the given format.
func Result(w *output.Writer, res *testparser.RunResult, format string, opts Options) error {
	switch format {
	case FormatText:
		Text(w, res, opts)
		return nil
	case FormatJSON, FormatYAML:
		if opts.Status != "" {
			filtered := *res
			filtered.Tests = res.Filter(opts.Status)
			return Encode(w.Out(), &filtered, format)
		}
		return Encode(w.Out(), res, format)
	default:
		return CheckFormat(format, ResultFormats)
	}
}

// Text prints a human-readable summary of res followed by its tests.
func Text(w *output.Writer, res *testparser.RunResult, opts Options) {
	title := opts.Title
	if title == "" {
		title = "Test Run"
	}
	w.SummaryHeader(title)

	if opts.ID != "" {
		w.SummaryItem("ID", opts.ID)
	}
	if opts.Env != "" {
		w.SummaryItem("Environment", opts.Env)
	}
	w.SummaryItem("Status", StatusLabel(res.Status()))
	w.SummaryPassed("Passed", fmt.Sprintf("%d", res.Summary.Passed))
	w.SummaryFailed("Failed", fmt.Sprintf("%d", res.Summary.Failed))
	w.SummarySkipped("Skipped", fmt.Sprintf("%d", res.Summary.Skipped))
	w.SummaryItem("Total", fmt.Sprintf("%d", res.Summary.Total))
	w.SummaryItem("Pass rate", fmt.Sprintf("%d%%", res.PassRate()))
	if res.Duration != "" {
		w.SummaryItem("Duration", res.Duration)
	}
	if !res.Timestamp.IsZero() {
		w.SummaryItem("Timestamp", res.Timestamp.UTC().Format(time.RFC3339))
	}

	tests := res.Filter(opts.Status)
	if len(tests) > 0 {
		w.SummarySectionLabel(sectionLabel(opts.Status))
		for _, t := range tests {
			w.TestLine(string(t.Status), displayName(t), t.Duration, t.Error)
		}
	}

	switch {
	case res.Summary.Total == 0:
		w.Hint("\nNo test results found in input.")
	case res.Summary.Failed > 0:
		w.FinalFailure("%d of %d tests failed.", res.Summary.Failed, res.Summary.Total)
	default:
		w.FinalSuccess("%d of %d tests passed.", res.Summary.Passed, res.Summary.Total)
	}
}

// StatusLabel returns a title-cased label for a status, e.g. "Passed".
func StatusLabel(s testparser.Status) string {
	return titleCase.String(string(s))
}

func sectionLabel(filter testparser.Status) string {
	if filter == "" {
		return "Tests:"
	}
	return StatusLabel(filter) + " tests:"
}

func displayName(t testparser.TestRecord) string {
	if t.Suite == "" {
		return t.Name
	}
	return t.Suite + " › " + t.Name
}

// Encode writes v to out as indented JSON or YAML.
func Encode(out io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown encoding %q", format)
	}
}
