package config

// Default configuration values.
const (
	DefaultEnv          = "local"
	DefaultStoreDir     = ".testcenter"
	DefaultParseFormat  = "auto"
	DefaultOutputFormat = "text"
)

// DefaultEnvironments are the environments a run may target when the
// config declares none.
var DefaultEnvironments = []string{"local", "dev", "test"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if len(cfg.Environments) == 0 {
		cfg.Environments = append([]string(nil), DefaultEnvironments...)
	}
	if cfg.Env != "" {
		cfg.envSet = true
	} else {
		cfg.Env = DefaultEnv
		if !cfg.HasEnvironment(DefaultEnv) {
			cfg.Env = cfg.Environments[0]
		}
	}
	if cfg.Store == nil {
		cfg.Store = &StoreConfig{}
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = DefaultStoreDir
	}
	if cfg.Parse == nil {
		cfg.Parse = &ParseConfig{}
	}
	if cfg.Parse.Format == "" {
		cfg.Parse.Format = DefaultParseFormat
	}
	if cfg.Output == nil {
		cfg.Output = &OutputConfig{}
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{} // optional; empty file disables export
	}
}
