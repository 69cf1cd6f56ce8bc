package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/leaderreps/testcenter/internal/testparser"
)

// envNamePattern matches environment names: lowercase letters, digits,
// hyphens and underscores, starting with a letter.
var envNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// OutputFormats are the renderings a parse result supports.
var OutputFormats = []string{"text", "json", "yaml"}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration with defaults applied.
func Validate(cfg *Config) error {
	for i, env := range cfg.Environments {
		if err := ValidateEnvName(env); err != nil {
			return &ValidationError{Field: fmt.Sprintf("environments[%d]", i), Message: err.(*ValidationError).Message}
		}
	}

	if !cfg.HasEnvironment(cfg.Env) {
		return &ValidationError{
			Field:   "env",
			Message: fmt.Sprintf("%q is not one of the declared environments (%s)", cfg.Env, strings.Join(cfg.Environments, ", ")),
		}
	}

	if formats := testparser.NewRegistry(nil).Formats(); !slices.Contains(formats, cfg.Parse.Format) {
		return &ValidationError{
			Field:   "parse.format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(formats, ", ")),
		}
	}

	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		return &ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(OutputFormats, ", ")),
		}
	}

	if strings.TrimSpace(cfg.Store.Dir) == "" {
		return &ValidationError{Field: "store.dir", Message: "is required"}
	}

	return nil
}

// ValidateEnvName checks if an environment name is valid.
func ValidateEnvName(name string) error {
	if name == "" {
		return &ValidationError{Field: "env", Message: "is required"}
	}
	if !envNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "env",
			Message: fmt.Sprintf("%q must match pattern ^[a-z][a-z0-9_-]*$", name),
		}
	}
	return nil
}
