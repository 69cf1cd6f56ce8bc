package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leaderreps/testcenter/internal/output"
)

const consoleOutput = `Running 3 tests using 1 worker

  ✓ 1 [chromium] smoke.spec.js:10 › Login succeeds (1.2s)
  ✘ 2 [chromium] smoke.spec.js:20 › Logout fails (0.8s)
  - 3 [chromium] smoke.spec.js:30 › Skipped test

  22 passed (42.9s)
`

// captureOutput redirects the shared writer to buffers for the test.
func captureOutput(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	old := out
	out = output.NewWithWriters(stdout, stderr, false)
	t.Cleanup(func() { out = old })
	return stdout, stderr
}

// withStdin makes commands read input from s.
func withStdin(t *testing.T, s string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(s)
	t.Cleanup(func() { stdin = old })
}

// isolate points settings at a temp home, clears testcenter environment
// variables and changes into an empty working directory, which it returns.
func isolate(t *testing.T) string {
	t.Helper()

	oldBasePath := globalSettingsBasePath
	globalSettingsBasePath = t.TempDir()
	t.Cleanup(func() { globalSettingsBasePath = oldBasePath })

	t.Setenv(envVarEnv, "")
	t.Setenv(envVarStore, "")
	t.Setenv(envNoColor, "1")

	dir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
