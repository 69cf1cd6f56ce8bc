package testparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

// Per-test lines carry a status glyph, the test's ordinal and a "›"
// separator. The display name is what follows the first separator.
//
//	✓  1 [chromium] › smoke.spec.js:10:5 › Login succeeds (1.2s)
//	✘  2 [chromium] › smoke.spec.js:20:5 › Logout fails (812ms)
//	-  3 [chromium] › smoke.spec.js:30:5 › Skipped test
var (
	passedLineRegex  = regexp.MustCompile(`[✓✔]\s*\d+[^›]*›\s*(\S.*)$`)
	failedLineRegex  = regexp.MustCompile(`[✘✗×✕]\s*\d+[^›]*›\s*(\S.*)$`)
	skippedLineRegex = regexp.MustCompile(`(?:^|\s)-\s*\d+[^›]*›\s*(\S.*)$`)

	// trailing per-test duration, e.g. "(1.2s)" or "(350ms)"
	testDurationRegex = regexp.MustCompile(`\s*\((\d+(?:\.\d+)?(?:ms|s|m|h))\)\s*$`)
)

// Footer lines, e.g. "22 passed (42.9s)" or "3 passed, 5 failed (10.0s)".
var (
	passedSummaryRegex = regexp.MustCompile(`\d+\s+passed\b.*\((\d+(?:\.\d+)?(?:ms|s|m|h))\)`)
	failedSummaryRegex = regexp.MustCompile(`(\d+)\s+failed\b`)
)

// lineClassifiers are tried in order; the first match wins.
var lineClassifiers = []struct {
	status Status
	regex  *regexp.Regexp
}{
	{StatusPassed, passedLineRegex},
	{StatusFailed, failedLineRegex},
	{StatusSkipped, skippedLineRegex},
}

// ClassifyLine inspects a single line of runner output. It returns the test
// record and true when the line reports a passed, failed or skipped test,
// and false for any other line. ANSI color sequences are ignored.
func ClassifyLine(line string) (TestRecord, bool) {
	line = stripansi.Strip(line)
	for _, c := range lineClassifiers {
		match := c.regex.FindStringSubmatch(line)
		if len(match) < 2 {
			continue
		}
		name, duration := splitTestDuration(strings.TrimSpace(match[1]))
		if name == "" {
			continue
		}
		return TestRecord{Name: name, Status: c.status, Duration: duration}, true
	}
	return TestRecord{}, false
}

// splitTestDuration removes a trailing "(1.2s)" from a test name.
// A name that is nothing but a duration is left untouched.
func splitTestDuration(name string) (string, string) {
	loc := testDurationRegex.FindStringSubmatchIndex(name)
	if loc == nil || loc[0] == 0 {
		return name, ""
	}
	return strings.TrimSpace(name[:loc[0]]), name[loc[2]:loc[3]]
}

// Footer is what the summary lines of a run say.
type Footer struct {
	// Duration is the elapsed time from the last "N passed (...)" line.
	Duration string
	// Failed is the count from the last "N failed" line; valid only when
	// HasFailed is set.
	Failed    int
	HasFailed bool
}

// ExtractSummary scans lines top to bottom for footer summary lines.
// Both searches run on every line, and later matches overwrite earlier ones.
func ExtractSummary(lines []string) Footer {
	var footer Footer
	for _, line := range lines {
		line = stripansi.Strip(line)

		if match := passedSummaryRegex.FindStringSubmatch(line); len(match) >= 2 {
			footer.Duration = match[1]
		}

		if match := failedSummaryRegex.FindStringSubmatch(line); len(match) >= 2 {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			footer.Failed = n
			footer.HasFailed = true
		}
	}
	return footer
}

// ConsoleParser parses line-oriented runner output such as Playwright's
// "list" reporter.
//
// Per-test lines are counted by status. A footer "N failed" line is
// authoritative for the failed count, since runners report retried and
// flaky failures there that never appear as individual failed lines.
type ConsoleParser struct {
	// Now stamps results. Defaults to the current UTC time.
	Now Clock
}

// Name returns the parser name.
func (p *ConsoleParser) Name() string {
	return "list"
}

// Parse classifies every line of output, applies the footer summary and
// returns the aggregated result.
func (p *ConsoleParser) Parse(output string) RunResult {
	result := newRunResult()
	lines := splitLines(output)

	for _, line := range lines {
		record, ok := ClassifyLine(line)
		if !ok {
			continue
		}
		result.Tests = append(result.Tests, record)
		result.Summary.count(record.Status)
	}

	footer := ExtractSummary(lines)
	result.Duration = footer.Duration
	// A footer count too large to total is ignored like an unparsable one.
	if footer.HasFailed {
		if _, ok := countSum(result.Summary.Passed, footer.Failed, result.Summary.Skipped); ok {
			result.Summary.Failed = footer.Failed
		}
	}

	result.Summary.recount()
	result.Timestamp = p.now()
	return result
}

func (p *ConsoleParser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return utcNow()
}

// splitLines splits on newlines and drops carriage returns.
func splitLines(output string) []string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
