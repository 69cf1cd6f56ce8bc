package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GlobalSettings holds user-level CLI settings stored in ~/.testcenter/settings.json.
// These settings apply across all projects and persist between sessions.
type GlobalSettings struct {
	// LastEnv is the environment of the last recorded run.
	LastEnv string `json:"last_env,omitempty"`
}

// globalSettingsDir is the directory name for global testcenter settings.
const globalSettingsDir = ".testcenter"

// globalSettingsBasePath overrides the home directory for testing.
// When empty (default), uses os.UserHomeDir().
var globalSettingsBasePath string

// getGlobalSettingsPath returns the path to the global settings file.
func getGlobalSettingsPath() (string, error) {
	basePath := globalSettingsBasePath
	if basePath == "" {
		var err error
		basePath, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(basePath, globalSettingsDir, "settings.json"), nil
}

// loadGlobalSettings loads the global settings from ~/.testcenter/settings.json.
// Returns an empty settings struct if the file doesn't exist or can't be parsed.
func loadGlobalSettings() *GlobalSettings {
	path, err := getGlobalSettingsPath()
	if err != nil {
		return &GlobalSettings{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &GlobalSettings{}
	}

	var settings GlobalSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return &GlobalSettings{}
	}

	return &settings
}

// saveGlobalSettings writes settings to ~/.testcenter/settings.json.
func saveGlobalSettings(settings *GlobalSettings) error {
	path, err := getGlobalSettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// rememberEnv stores env as the last used environment. Failures only
// affect the next default, so they are reported in verbose mode only.
func rememberEnv(env string) {
	settings := loadGlobalSettings()
	if settings.LastEnv == env {
		return
	}
	settings.LastEnv = env
	if err := saveGlobalSettings(settings); err != nil {
		out.Debug("could not save settings: %v", err)
	}
}
