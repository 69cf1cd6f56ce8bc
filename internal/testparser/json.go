package testparser

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
)

// suiteSeparator joins nested suite titles.
const suiteSeparator = " › "

// JSONReport is the subset of Playwright's JSON reporter output we read.
type JSONReport struct {
	Suites []JSONSuite `json:"suites"`
	Stats  *JSONStats  `json:"stats"`
}

// JSONSuite is a describe block or spec file.
type JSONSuite struct {
	Title  string      `json:"title"`
	File   string      `json:"file"`
	Specs  []JSONSpec  `json:"specs"`
	Suites []JSONSuite `json:"suites"`
}

// JSONSpec is a single test declaration.
type JSONSpec struct {
	Title string     `json:"title"`
	File  string     `json:"file"`
	Tests []JSONTest `json:"tests"`
}

// JSONTest is one project's execution of a spec.
type JSONTest struct {
	// Status is "expected", "unexpected", "flaky" or "skipped".
	Status      string           `json:"status"`
	ProjectName string           `json:"projectName"`
	Results     []JSONTestResult `json:"results"`
}

// JSONTestResult is one attempt of a test.
type JSONTestResult struct {
	Status   string     `json:"status"`
	Duration float64    `json:"duration"` // milliseconds
	Retry    int        `json:"retry"`
	Error    *JSONError `json:"error"`
}

// JSONError is a failure reported for an attempt.
type JSONError struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// JSONStats are the run totals.
type JSONStats struct {
	Duration   float64 `json:"duration"` // milliseconds
	Expected   int     `json:"expected"`
	Unexpected int     `json:"unexpected"`
	Flaky      int     `json:"flaky"`
	Skipped    int     `json:"skipped"`
}

// JSONReportParser parses Playwright's JSON reporter output.
type JSONReportParser struct {
	// Now stamps results. Defaults to the current UTC time.
	Now Clock
}

// Name returns the parser name.
func (p *JSONReportParser) Name() string {
	return "json"
}

// Parse parses a JSON report held in a string.
func (p *JSONReportParser) Parse(output string) RunResult {
	return p.ParseJSON(strings.NewReader(output))
}

// ParseJSON parses a JSON report from a reader. Input that is not a JSON
// report yields an empty result.
func (p *JSONReportParser) ParseJSON(r io.Reader) RunResult {
	result := newRunResult()

	var report JSONReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		result.Timestamp = p.now()
		return result
	}

	for _, suite := range report.Suites {
		collectSuite(&result, suite, "")
	}

	if report.Stats != nil {
		if summary, ok := report.Stats.summary(); ok {
			result.Summary = summary
		}
		result.Duration = FormatMillis(report.Stats.Duration)
	}

	result.Summary.recount()
	result.Timestamp = p.now()
	return result
}

func (p *JSONReportParser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return utcNow()
}

// collectSuite appends the suite's tests to result, depth first.
func collectSuite(result *RunResult, suite JSONSuite, parentTitle string) {
	title := suite.Title
	if parentTitle != "" {
		title = parentTitle + suiteSeparator + suite.Title
	}

	for _, spec := range suite.Specs {
		file := spec.File
		if file == "" {
			file = suite.File
		}
		for _, test := range spec.Tests {
			record := TestRecord{
				Name:   spec.Title,
				Status: jsonTestStatus(test.Status),
				Suite:  title,
				File:   file,
			}
			if len(test.Results) > 0 {
				first := test.Results[0]
				if first.Duration > 0 {
					record.Duration = FormatMillis(first.Duration)
				}
				if record.Status == StatusFailed && first.Error != nil {
					record.Error = extractFailureReason(first.Error.Message)
				}
			}
			result.Tests = append(result.Tests, record)
			result.Summary.count(record.Status)
		}
	}

	for _, child := range suite.Suites {
		collectSuite(result, child, title)
	}
}

// summary maps the report's stats to counts. Negative counts read as
// zero; counts whose total overflows are rejected.
func (s *JSONStats) summary() (Summary, bool) {
	// Flaky tests passed on retry but still count as failures here.
	failed, ok := countSum(max(s.Unexpected, 0), max(s.Flaky, 0))
	if !ok {
		return Summary{}, false
	}
	summary := Summary{
		Passed:  max(s.Expected, 0),
		Failed:  failed,
		Skipped: max(s.Skipped, 0),
	}
	if _, ok := countSum(summary.Passed, summary.Failed, summary.Skipped); !ok {
		return Summary{}, false
	}
	return summary, true
}

func jsonTestStatus(status string) Status {
	switch status {
	case "expected":
		return StatusPassed
	case "skipped":
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// extractFailureReason returns the first meaningful line of an error
// message, without color codes, truncated for display.
func extractFailureReason(message string) string {
	const maxLen = 100
	for _, line := range strings.Split(stripansi.Strip(message), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > maxLen {
			cut := maxLen - 3
			for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
				cut--
			}
			trimmed = trimmed[:cut] + "..."
		}
		return trimmed
	}
	return ""
}

// FormatMillis renders a duration in milliseconds the way the dashboard
// shows it: "850ms", "42.9s" or "2m 5s".
func FormatMillis(ms float64) string {
	if !(ms > 0) || math.IsInf(ms, 0) {
		ms = 0
	}
	switch {
	case math.Round(ms) < 1000:
		return fmt.Sprintf("%.0fms", math.Round(ms))
	case ms < 60000:
		return fmt.Sprintf("%.1fs", ms/1000)
	default:
		secs := math.Round(ms / 1000)
		return fmt.Sprintf("%.0fm %.0fs", math.Floor(secs/60), math.Mod(secs, 60))
	}
}
