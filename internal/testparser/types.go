// Package testparser turns test runner output into structured run results.
package testparser

import (
	"math"
	"time"
)

// Status is the outcome of a single test.
type Status string

// Test statuses.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// TestRecord is one test found in the runner output.
type TestRecord struct {
	Name     string `json:"name" yaml:"name"`
	Status   Status `json:"status" yaml:"status"`
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"` // as printed, e.g. "1.2s"
	Suite    string `json:"suite,omitempty" yaml:"suite,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary holds aggregate test counts.
// Total is always Passed + Failed + Skipped.
type Summary struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Total   int `json:"total" yaml:"total"`
}

// Add adds another Summary to this one and recomputes the total.
func (s *Summary) Add(other *Summary) {
	if other == nil {
		return
	}
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.recount()
}

func (s *Summary) recount() {
	s.Total = s.Passed + s.Failed + s.Skipped
}

// countSum adds non-negative counts. It reports false when a count is
// negative or the sum does not fit in an int.
func countSum(counts ...int) (int, bool) {
	sum := 0
	for _, n := range counts {
		if n < 0 || n > math.MaxInt-sum {
			return 0, false
		}
		sum += n
	}
	return sum, true
}

// count increments the counter matching status.
func (s *Summary) count(status Status) {
	switch status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}

// RunResult is the structured outcome of one parse.
type RunResult struct {
	Tests     []TestRecord `json:"tests" yaml:"tests"`
	Summary   Summary      `json:"summary" yaml:"summary"`
	Duration  string       `json:"duration" yaml:"duration"`
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
}

// newRunResult returns an empty result with a non-nil test slice, so it
// encodes as [] rather than null.
func newRunResult() RunResult {
	return RunResult{Tests: []TestRecord{}}
}

// PassRate returns the percentage of passed tests, rounded to the nearest
// integer. It is 0 when no tests were counted.
func (r *RunResult) PassRate() int {
	if r.Summary.Total == 0 {
		return 0
	}
	return int(math.Round(float64(r.Summary.Passed) / float64(r.Summary.Total) * 100))
}

// Status returns StatusFailed if any test failed, StatusPassed otherwise.
func (r *RunResult) Status() Status {
	if r.Summary.Failed > 0 {
		return StatusFailed
	}
	return StatusPassed
}

// Filter returns the tests with the given status, in source order.
// An empty status returns all tests.
func (r *RunResult) Filter(status Status) []TestRecord {
	if status == "" {
		return r.Tests
	}
	filtered := make([]TestRecord, 0, len(r.Tests))
	for _, t := range r.Tests {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Parser defines the interface for test output parsers.
type Parser interface {
	// Parse converts raw runner output into a RunResult. It never fails:
	// unrecognized input yields an empty result.
	Parse(output string) RunResult
	// Name returns the name of the parser.
	Name() string
}

// Clock returns the current time. Parsers stamp results with it.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
