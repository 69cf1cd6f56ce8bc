package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leaderreps/testcenter/internal/schema"
)

// FileName is the name of the project configuration file.
const FileName = ".testcenter.json"

// ErrNotFound is returned when no .testcenter.json exists in the directory
// or any of its parents.
var ErrNotFound = errors.New(FileName + " not found in the working directory or any parent")

// Load reads and parses a .testcenter.json configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults reads a config file and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// LoadAndValidate reads a config file, checks it against the schema,
// applies defaults, validates, and returns warnings.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, warnings, err := LoadWithWarnings(path, data)
	if err != nil {
		return nil, nil, err
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, warnings, &ValidationError{Field: filepath.Base(path), Message: err.Error()}
	}

	applyDefaults(cfg)
	resolveStoreDir(cfg, filepath.Dir(path))

	if err := Validate(cfg); err != nil {
		return nil, warnings, err
	}

	return cfg, warnings, nil
}

// resolveStoreDir makes a relative store directory relative to baseDir.
func resolveStoreDir(cfg *Config, baseDir string) {
	if filepath.IsAbs(cfg.Store.Dir) {
		return
	}
	cfg.Store.Dir = filepath.Join(baseDir, cfg.Store.Dir)
}

// Find walks up from the current working directory until it finds
// .testcenter.json and returns its path.
func Find() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindFrom(cwd)
}

// FindFrom walks up from the given directory until it finds .testcenter.json.
func FindFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
