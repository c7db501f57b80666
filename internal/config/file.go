package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDirName       = "controlwork"
	settingsFileName = "settings.yaml"
	dbFileName       = "controlwork.db"
)

// DefaultDir returns ~/.config/controlwork (or the platform equivalent).
func DefaultDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(cfg, appDirName), nil
}

func SettingsPath(dir string) string { return filepath.Join(dir, settingsFileName) }
func DBPath(dir string) string       { return filepath.Join(dir, dbFileName) }

// Exists reports whether a settings file has been written before.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads settings from YAML. A missing file yields defaults and no error;
// an unreadable or malformed file yields defaults together with the error.
func Load(path string) (Settings, error) {
	settings := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return Default(), fmt.Errorf("parse settings yaml: %w", err)
	}
	return settings.Normalize(), nil
}

// Save normalizes and writes settings as YAML, creating the directory if needed.
func Save(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(settings.Normalize())
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
