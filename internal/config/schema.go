// Package config provides loading and validation for .testcenter.json.
package config

// Config represents the complete .testcenter.json configuration.
type Config struct {
	// Env is the environment runs are recorded against by default.
	Env          string         `json:"env,omitempty"`
	Environments []string       `json:"environments,omitempty"`
	Store        *StoreConfig   `json:"store,omitempty"`
	Parse        *ParseConfig   `json:"parse,omitempty"`
	Output       *OutputConfig  `json:"output,omitempty"`
	Metrics      *MetricsConfig `json:"metrics,omitempty"`

	envSet bool
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Dir string `json:"dir,omitempty"` // relative paths resolve against the config file
}

// ParseConfig configures how test output is read.
type ParseConfig struct {
	Format string `json:"format,omitempty"` // "auto", "list", "json", ...
}

// OutputConfig configures how parse results are rendered.
type OutputConfig struct {
	Format string `json:"format,omitempty"` // "text", "json" or "yaml"
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `json:"file,omitempty"`
}

// HasEnvironment reports whether env is one of the declared environments.
func (c *Config) HasEnvironment(env string) bool {
	for _, e := range c.Environments {
		if e == env {
			return true
		}
	}
	return false
}

// EnvSet reports whether env was given explicitly rather than defaulted.
func (c *Config) EnvSet() bool {
	return c.envSet
}
