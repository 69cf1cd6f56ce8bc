package output

import (
	"bytes"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := &Writer{
		out:   stdout,
		err:   stderr,
		color: false, // Disable color for predictable test output
		quiet: false,
	}
	return w, stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil {
		t.Error("out writer is nil")
	}
	if w.err == nil {
		t.Error("err writer is nil")
	}
}

func TestWriter_Setters(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.quiet {
		t.Error("SetQuiet(true) did not set quiet")
	}
	w.SetVerbose(true)
	if !w.verbose {
		t.Error("SetVerbose(true) did not set verbose")
	}
	w.SetColor(true)
	if !w.Color() {
		t.Error("SetColor(true) did not enable color")
	}
	if w.Out() != stdout {
		t.Error("Out() did not return stdout writer")
	}
}

func TestWriter_Println(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Println("hello %s", "world")

	if got := stdout.String(); got != "hello world\n" {
		t.Errorf("Println() = %q, want %q", got, "hello world\n")
	}
}

func TestWriter_Errorln(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.Errorln("error %d", 42)

	if got := stderr.String(); got != "error 42\n" {
		t.Errorf("Errorln() = %q, want %q", got, "error 42\n")
	}
}

func TestWriter_Info(t *testing.T) {
	tests := []struct {
		name   string
		quiet  bool
		expect string
	}{
		{"normal mode", false, "info message\n"},
		{"quiet mode", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, _ := newTestWriter()
			w.quiet = tt.quiet

			w.Info("info %s", "message")

			if got := stdout.String(); got != tt.expect {
				t.Errorf("Info() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestWriter_Debug(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		expect  string
	}{
		{"verbose", true, "watching results.txt\n"},
		{"not verbose", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, stderr := newTestWriter()
			w.verbose = tt.verbose

			w.Debug("watching %s", "results.txt")

			if got := stderr.String(); got != tt.expect {
				t.Errorf("Debug() = %q, want %q", got, tt.expect)
			}
			if stdout.Len() != 0 {
				t.Errorf("Debug() wrote to stdout: %q", stdout.String())
			}
		})
	}
}

func TestWriter_Success(t *testing.T) {
	tests := []struct {
		name   string
		color  bool
		expect string
	}{
		{"without color", false, "done\n"},
		{"with color", true, "\033[32mdone\033[0m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, _ := newTestWriter()
			w.color = tt.color

			w.Success("done")

			if got := stdout.String(); got != tt.expect {
				t.Errorf("Success() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestWriter_Warning(t *testing.T) {
	tests := []struct {
		name   string
		color  bool
		expect string
	}{
		{"without color", false, "warning: caution\n"},
		{"with color", true, "\033[33mwarning: caution\033[0m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, stderr := newTestWriter()
			w.color = tt.color

			w.Warning("caution")

			if got := stderr.String(); got != tt.expect {
				t.Errorf("Warning() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.ErrorPrefix("unknown command: %s", "frob")

	if got := stderr.String(); got != "testcenter: unknown command: frob\n" {
		t.Errorf("ErrorPrefix() = %q", got)
	}
}

func TestWriter_TestLine(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		duration string
		errMsg   string
		expect   string
	}{
		{"passed", "passed", "1.2s", "", "    + Login succeeds (1.2s)\n"},
		{"failed with reason", "failed", "5.0s", "Timeout exceeded", "    x Login succeeds (5.0s)  Timeout exceeded\n"},
		{"skipped without duration", "skipped", "", "", "    - Login succeeds\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, _ := newTestWriter()

			w.TestLine(tt.status, "Login succeeds", tt.duration, tt.errMsg)

			if got := stdout.String(); got != tt.expect {
				t.Errorf("TestLine() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestWriter_TestLine_Color(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.color = true

	w.TestLine("failed", "Logout", "", "")

	if got := stdout.String(); !strings.Contains(got, red+"✗"+reset) {
		t.Errorf("TestLine() = %q, want red cross", got)
	}
}

func TestWriter_Summary(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SummaryHeader("Test Run")
	w.SummaryPassed("Passed", "3")
	w.SummaryFailed("Failed", "1")
	w.SummarySkipped("Skipped", "0")
	w.SummaryItem("Duration", "12.3s")

	expected := "\n=== Test Run ===\n\n  Passed: 3\n  Failed: 1\n  Skipped: 0\n  Duration: 12.3s\n"
	if got := stdout.String(); got != expected {
		t.Errorf("summary = %q, want %q", got, expected)
	}
}

func TestWriter_Final(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.FinalSuccess("All %d tests passed", 4)
	w.FinalFailure("%d test(s) failed", 1)

	expected := "\nAll 4 tests passed\n\n1 test(s) failed\n"
	if got := stdout.String(); got != expected {
		t.Errorf("final = %q, want %q", got, expected)
	}
}

func TestWriter_Hint_Quiet(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.quiet = true

	w.Hint("run with --no-save to skip history")

	if stdout.Len() != 0 {
		t.Errorf("Hint() in quiet mode wrote %q", stdout.String())
	}
}

func TestWriter_List(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.List([]string{"local", "dev", "test"})

	expected := "  - local\n  - dev\n  - test\n"
	if got := stdout.String(); got != expected {
		t.Errorf("List() = %q, want %q", got, expected)
	}
}

func TestWriter_Table(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Table([]string{"Key", "Value", "Source"}, [][]string{
		{"env", "dev", "flag"},
		{"store.dir", ".testcenter", "default"},
	})

	output := stdout.String()
	for _, want := range []string{"Key", "Value", "Source", "store.dir", ".testcenter", "default", "---"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table() missing %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "|") || strings.Contains(output, "+") {
		t.Errorf("Table() drew borders:\n%s", output)
	}
}

func TestWriter_Table_RowLongerThanHeaders(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Table([]string{"A", "B"}, [][]string{{"1", "2", "dropped"}})

	output := stdout.String()
	if strings.Contains(output, "dropped") {
		t.Error("Table() printed a cell without a header")
	}
	if !strings.Contains(output, "1") {
		t.Error("Table() should handle long rows gracefully")
	}
}

func TestWriter_HelpCommand(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.HelpCommand("parse [file]", "Parse test output", 14)

	if got := stdout.String(); got != "  parse [file]    Parse test output\n" {
		t.Errorf("HelpCommand() = %q", got)
	}
}

func TestWriter_ColorPlaceholders(t *testing.T) {
	w, _, _ := newTestWriter()

	got := w.colorPlaceholders("show <id>")

	want := "show " + reset + colorPlaceholder + "<id>" + reset
	if got != want {
		t.Errorf("colorPlaceholders() = %q, want %q", got, want)
	}
}
