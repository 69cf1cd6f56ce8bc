package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leaderreps/testcenter/internal/history"
	"github.com/leaderreps/testcenter/internal/testparser"
)

func TestParse_Stdin(t *testing.T) {
	dir := isolate(t)
	stdout, _ := captureOutput(t)
	withStdin(t, consoleOutput)

	if code := Run([]string{"parse"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}

	got := stdout.String()
	for _, want := range []string{
		"Environment: local",
		"Passed: 1",
		"Failed: 1",
		"Skipped: 1",
		"Total: 3",
		"Duration: 42.9s",
		"    + Login succeeds (1.2s)",
		"    x Logout fails (0.8s)",
		"    - Skipped test",
		"1 of 3 tests failed.",
		"Recorded run ",
		"(local) in .testcenter.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("parse output missing %q:\n%s", want, got)
		}
	}

	store := history.NewFileStore(filepath.Join(dir, ".testcenter"))
	if _, err := os.Stat(store.CurrentFile()); err != nil {
		t.Errorf("current run not saved: %v", err)
	}
	if _, err := os.Stat(store.HistoryFile()); err != nil {
		t.Errorf("history not saved: %v", err)
	}
}

func TestParse_FailureOverride(t *testing.T) {
	isolate(t)
	stdout, _ := captureOutput(t)
	withStdin(t, "✘ 1 abc › Test A\n✘ 2 abc › Test B\n3 passed, 5 failed (10.0s)\n")

	if code := Run([]string{"parse", "--output=json", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}

	var res testparser.RunResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if res.Summary.Failed != 5 {
		t.Errorf("Summary.Failed = %d, want 5", res.Summary.Failed)
	}
	if len(res.Tests) != 2 {
		t.Errorf("len(Tests) = %d, want 2", len(res.Tests))
	}
	if res.Duration != "10.0s" {
		t.Errorf("Duration = %q, want 10.0s", res.Duration)
	}
}

func TestParse_NoMatches(t *testing.T) {
	isolate(t)
	stdout, _ := captureOutput(t)
	withStdin(t, "random unrelated text\nwith no markers")

	if code := Run([]string{"parse", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "No test results found in input.") {
		t.Errorf("missing empty-input hint:\n%s", stdout.String())
	}
}

func TestParse_RecordedConfirmation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"text saved", []string{"parse"}, true},
		{"no save", []string{"parse", "--no-save"}, false},
		{"json output", []string{"parse", "--output=json"}, false},
		{"yaml output", []string{"parse", "--output=yaml"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			stdout, _ := captureOutput(t)
			withStdin(t, consoleOutput)

			if code := Run(tt.args); code != 0 {
				t.Fatalf("parse exit code = %d, want 0", code)
			}
			if got := strings.Contains(stdout.String(), "Recorded run"); got != tt.want {
				t.Errorf("confirmation printed = %v, want %v:\n%s", got, tt.want, stdout.String())
			}
		})
	}
}

func TestParse_FormatAutoIgnoresCase(t *testing.T) {
	for _, format := range []string{"auto", "AUTO", "Auto"} {
		t.Run(format, func(t *testing.T) {
			isolate(t)
			stdout, _ := captureOutput(t)
			withStdin(t, consoleOutput)

			if code := Run([]string{"parse", "--no-save", "--format=" + format}); code != 0 {
				t.Fatalf("parse --format=%s exit code = %d, want 0", format, code)
			}
			if !strings.Contains(stdout.String(), "Total: 3") {
				t.Errorf("input not detected:\n%s", stdout.String())
			}
		})
	}
}

func TestParse_File(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "results.txt"), consoleOutput)
	stdout, _ := captureOutput(t)

	if code := Run([]string{"parse", path, "--output=yaml", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "name: Login succeeds") {
		t.Errorf("YAML output missing test:\n%s", stdout.String())
	}
}

func TestParse_NoSave(t *testing.T) {
	dir := isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)

	if code := Run([]string{"parse", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if _, err := os.Stat(filepath.Join(dir, ".testcenter")); !os.IsNotExist(err) {
		t.Errorf("store created with --no-save: %v", err)
	}
}

func TestParse_FailOnFailures(t *testing.T) {
	isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)

	if code := Run([]string{"parse", "--no-save", "--fail-on-failures"}); code != 1 {
		t.Errorf("parse exit code = %d, want 1", code)
	}
}

func TestParse_FailOnFailures_AllPassed(t *testing.T) {
	isolate(t)
	captureOutput(t)
	withStdin(t, "✓ 1 a › ok (1.0s)\n1 passed (1.0s)\n")

	if code := Run([]string{"parse", "--no-save", "--fail-on-failures"}); code != 0 {
		t.Errorf("parse exit code = %d, want 0", code)
	}
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{"unknown env flag", []string{"parse", "--env=prod"}, ""},
		{"unknown env variable", []string{"parse"}, "prod"},
		{"unknown output", []string{"parse", "--output=html"}, ""},
		{"unknown format", []string{"parse", "--format=junit"}, ""},
		{"two inputs", []string{"parse", "a.txt", "b.txt"}, ""},
		{"unknown flag", []string{"parse", "--nope"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(envVarEnv, tt.env)
			captureOutput(t)
			withStdin(t, consoleOutput)

			if code := Run(tt.args); code != 2 {
				t.Errorf("Run(%v) = %d, want 2", tt.args, code)
			}
		})
	}
}

func TestParse_MissingFile(t *testing.T) {
	isolate(t)
	_, stderr := captureOutput(t)

	if code := Run([]string{"parse", "missing.txt"}); code != 1 {
		t.Errorf("parse exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "read missing.txt") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestParse_RemembersEnv(t *testing.T) {
	isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)

	if code := Run([]string{"parse", "--env=dev"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if got := loadGlobalSettings().LastEnv; got != "dev" {
		t.Fatalf("LastEnv = %q, want dev", got)
	}

	stdout, _ := captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"parse", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Environment: dev") {
		t.Errorf("last env not reused:\n%s", stdout.String())
	}
}

func TestParse_EnvVariable(t *testing.T) {
	isolate(t)
	t.Setenv(envVarEnv, "test")
	stdout, _ := captureOutput(t)
	withStdin(t, consoleOutput)

	if code := Run([]string{"parse", "--no-save"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Environment: test") {
		t.Errorf("TESTCENTER_ENV ignored:\n%s", stdout.String())
	}
}

func TestParse_MetricsFile(t *testing.T) {
	dir := isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)
	metrics := filepath.Join(dir, "e2e.prom")

	if code := Run([]string{"parse", "--no-save", "--metrics-file", metrics}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `testcenter_tests{env="local",status="failed"} 1`) {
		t.Errorf("metrics file missing failed gauge:\n%s", data)
	}
}

func TestShow_CurrentRun(t *testing.T) {
	isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"parse"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}

	stdout, _ := captureOutput(t)
	if code := Run([]string{"show", "--status=failed"}); code != 0 {
		t.Fatalf("show exit code = %d, want 0", code)
	}
	got := stdout.String()
	if !strings.Contains(got, "=== Current Run ===") {
		t.Errorf("show output missing title:\n%s", got)
	}
	if !strings.Contains(got, "Failed tests:") || !strings.Contains(got, "Logout fails") {
		t.Errorf("show output missing failed test:\n%s", got)
	}
	if strings.Contains(got, "Login succeeds") {
		t.Errorf("show --status=failed listed a passed test:\n%s", got)
	}
}

func TestShow_ByID(t *testing.T) {
	isolate(t)
	captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"parse", "--env=test"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}

	stdout, _ := captureOutput(t)
	if code := Run([]string{"history", "--output=json"}); code != 0 {
		t.Fatalf("history exit code = %d, want 0", code)
	}
	var entries []history.Entry
	if err := json.Unmarshal(stdout.Bytes(), &entries); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, stdout.String())
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Env != "test" {
		t.Errorf("Env = %q, want test", entries[0].Env)
	}

	id := entries[0].ID
	for _, ref := range []string{id, id[len(id)-8:]} {
		stdout, _ := captureOutput(t)
		if code := Run([]string{"show", ref, "--output=json"}); code != 0 {
			t.Fatalf("show %s exit code = %d, want 0", ref, code)
		}
		var res testparser.RunResult
		if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
			t.Fatalf("show output is not JSON: %v", err)
		}
		if res.Summary.Total != 3 {
			t.Errorf("show %s: Total = %d, want 3", ref, res.Summary.Total)
		}
	}
}

func TestShow_Errors(t *testing.T) {
	isolate(t)

	_, stderr := captureOutput(t)
	if code := Run([]string{"show"}); code != 1 {
		t.Errorf("show with empty store = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "no test run recorded yet") {
		t.Errorf("stderr = %q", stderr.String())
	}

	captureOutput(t)
	if code := Run([]string{"show", "0123456789ab"}); code != 1 {
		t.Errorf("show unknown id = %d, want 1", code)
	}

	captureOutput(t)
	if code := Run([]string{"show", "--status=flaky"}); code != 2 {
		t.Errorf("show --status=flaky = %d, want 2", code)
	}
}

func TestHistory_Empty(t *testing.T) {
	isolate(t)
	stdout, _ := captureOutput(t)

	if code := Run([]string{"history"}); code != 0 {
		t.Fatalf("history exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "No test runs recorded yet.") {
		t.Errorf("history output = %q", stdout.String())
	}

	stdout, _ = captureOutput(t)
	if code := Run([]string{"history", "--output=json"}); code != 0 {
		t.Fatalf("history exit code = %d, want 0", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != "[]" {
		t.Errorf("empty JSON history = %q, want []", got)
	}
}

func TestHistory_Table(t *testing.T) {
	isolate(t)
	for range 2 {
		captureOutput(t)
		withStdin(t, consoleOutput)
		if code := Run([]string{"parse"}); code != 0 {
			t.Fatalf("parse exit code = %d, want 0", code)
		}
	}

	stdout, _ := captureOutput(t)
	if code := Run([]string{"history"}); code != 0 {
		t.Fatalf("history exit code = %d, want 0", code)
	}
	got := stdout.String()
	for _, want := range []string{"Test Run History", "Pass Rate", "2 run(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("history table missing %q:\n%s", want, got)
		}
	}
}

func TestHistory_Errors(t *testing.T) {
	isolate(t)

	captureOutput(t)
	if code := Run([]string{"history", "--output=text"}); code != 2 {
		t.Errorf("history --output=text = %d, want 2", code)
	}
	captureOutput(t)
	if code := Run([]string{"history", "extra"}); code != 2 {
		t.Errorf("history extra = %d, want 2", code)
	}
}

func TestStoreFlagAndEnvironment(t *testing.T) {
	dir := isolate(t)
	flagStore := filepath.Join(dir, "flag-store")
	envStore := filepath.Join(dir, "env-store")
	t.Setenv(envVarStore, envStore)

	captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"parse"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if _, err := os.Stat(history.NewFileStore(envStore).CurrentFile()); err != nil {
		t.Errorf("TESTCENTER_STORE ignored: %v", err)
	}

	captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"--store", flagStore, "parse"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	if _, err := os.Stat(history.NewFileStore(flagStore).CurrentFile()); err != nil {
		t.Errorf("--store ignored: %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".testcenter.json"), `{
  "env": "staging",
  "environments": ["dev", "staging"],
  "store": {"dir": "runs"},
  "output": {"format": "json"}
}`)

	stdout, _ := captureOutput(t)
	if code := Run([]string{"config", "validate"}); code != 0 {
		t.Fatalf("config validate exit code = %d, want 0", code)
	}
	for _, want := range []string{"Configuration is valid.", "Environments:\n  - dev\n  - staging\n"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("config validate output missing %q:\n%s", want, stdout.String())
		}
	}

	stdout, _ = captureOutput(t)
	if code := Run([]string{"config", "show"}); code != 0 {
		t.Fatalf("config show exit code = %d, want 0", code)
	}
	got := stdout.String()
	for _, want := range []string{"staging", "dev, staging", filepath.Join(dir, "runs"), "(disabled)"} {
		if !strings.Contains(got, want) {
			t.Errorf("config show missing %q:\n%s", want, got)
		}
	}

	stdout, _ = captureOutput(t)
	withStdin(t, consoleOutput)
	if code := Run([]string{"parse"}); code != 0 {
		t.Fatalf("parse exit code = %d, want 0", code)
	}
	var res testparser.RunResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("configured output format not applied: %v\n%s", err, stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "runs", "current.json")); err != nil {
		t.Errorf("configured store dir not used: %v", err)
	}
}

func TestConfig_Errors(t *testing.T) {
	dir := isolate(t)

	captureOutput(t)
	if code := Run([]string{"config"}); code != 2 {
		t.Errorf("config = %d, want 2", code)
	}
	captureOutput(t)
	if code := Run([]string{"config", "frob"}); code != 2 {
		t.Errorf("config frob = %d, want 2", code)
	}
	captureOutput(t)
	if code := Run([]string{"config", "validate"}); code != 2 {
		t.Errorf("config validate without file = %d, want 2", code)
	}

	writeFile(t, filepath.Join(dir, ".testcenter.json"), `{"env": "prod"}`)
	_, stderr := captureOutput(t)
	if code := Run([]string{"config", "validate"}); code != 2 {
		t.Errorf("config validate with undeclared env = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "invalid configuration") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestConfig_UnknownFieldWarning(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".testcenter.json"), `{"colour": "always"}`)

	_, stderr := captureOutput(t)
	if code := Run([]string{"config", "validate"}); code != 0 {
		t.Fatalf("config validate exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "warning:") || !strings.Contains(stderr.String(), "colour") {
		t.Errorf("missing unknown field warning: %q", stderr.String())
	}
}
