package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with command",
			err:      &Error{Command: "parse", Message: "unknown format \"junit\""},
			expected: "parse: unknown format \"junit\"",
		},
		{
			name:     "with cause",
			err:      &Error{Message: "read input", Cause: errors.New("no such file")},
			expected: "read input: no such file",
		},
		{
			name:     "with command and cause",
			err:      &Error{Command: "watch", Message: "watch file", Cause: errors.New("too many open files")},
			expected: "watch: watch file: too many open files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &Error{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	errNoCause := &Error{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"validation", KindValidation, ExitConfigError},
		{"not found", KindNotFound, ExitRuntimeError},
		{"environment", KindEnvironment, ExitEnvironmentError},
		{"tests failed", KindTestsFailed, ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name    string
		err     *Error
		kind    ErrorKind
		message string
	}{
		{"New", New("test error"), KindRuntime, "test error"},
		{"Newf", Newf("error %d: %s", 42, "details"), KindRuntime, "error 42: details"},
		{"Config", Config("invalid config"), KindConfig, "invalid config"},
		{"Configf", Configf("env %q is not declared", "prod"), KindConfig, `env "prod" is not declared`},
		{"Usagef", Usagef("show", "unexpected argument %q", "x"), KindValidation, `unexpected argument "x"`},
		{"Environment", Environment("store locked"), KindEnvironment, "store locked"},
		{"Environmentf", Environmentf("cannot write %s", "/ro"), KindEnvironment, "cannot write /ro"},
		{"Wrap", Wrap(cause, "save"), KindRuntime, "save"},
		{"WrapConfig", WrapConfig(cause, "load config"), KindConfig, "load config"},
		{"WrapEnvironment", WrapEnvironment(cause, "save"), KindEnvironment, "save"},
		{"TestsFailed", TestsFailed(3), KindTestsFailed, "3 test(s) failed"},
		{"NotFound", NotFound("run", "abc"), KindNotFound, "run not found: abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}

func TestUsagefCommand(t *testing.T) {
	err := Usagef("history", "unknown flag: %s", "--nope")
	if err.Command != "history" {
		t.Errorf("Command = %q, want history", err.Command)
	}
	if err.ExitCode() != ExitConfigError {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitConfigError)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitRuntimeError},
		{"runtime", New("boom"), ExitRuntimeError},
		{"config", Config("bad"), ExitConfigError},
		{"environment", Environment("locked"), ExitEnvironmentError},
		{"wrapped config", fmt.Errorf("load: %w", Config("bad")), ExitConfigError},
		{"wrapped environment", fmt.Errorf("save: %w", Environment("locked")), ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(fmt.Errorf("x: %w", TestsFailed(1)), KindTestsFailed) {
		t.Error("IsKind(wrapped TestsFailed) = false, want true")
	}
	if IsKind(New("boom"), KindTestsFailed) {
		t.Error("IsKind(runtime, KindTestsFailed) = true, want false")
	}
	if IsKind(errors.New("plain"), KindRuntime) {
		t.Error("IsKind(plain error) = true, want false")
	}
}
