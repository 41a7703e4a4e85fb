package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/jarvis-go/assets"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/filesystem"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "JARVIS_CONFIG"

// FileLoader loads YAML configuration from ~/.jarvis/config.yaml (overridable via JARVIS_CONFIG).
// API keys may live in a .env file next to the config or in the working directory.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}
	loadDotEnv(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
		data = assets.DefaultConfigYAML
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return hydrateDefaults(cfg, filepath.Dir(path)), nil
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".jarvis", "config.yaml")
}

// Default returns the embedded default configuration.
func Default() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse default config: %w", err)
	}
	return hydrateDefaults(cfg, filepath.Join(filesystem.UserHomeDir(), ".jarvis")), nil
}

// loadDotEnv reads .env from the working directory and the config directory.
// Variables already set in the environment win.
func loadDotEnv(configDir string) {
	for _, candidate := range []string{".env", filepath.Join(configDir, ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
		}
	}
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func hydrateDefaults(cfg domain.Config, configDir string) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DataDir == "" {
		cfg.Preferences.DataDir = filepath.Join(configDir, "data")
	}
	cfg.Preferences.DataDir = expandPath(cfg.Preferences.DataDir)

	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = filepath.Join(configDir, "guardrail.yaml")
	}
	cfg.Security.RulesFile = expandPath(cfg.Security.RulesFile)

	if cfg.Logging.File != "" {
		cfg.Logging.File = expandPath(cfg.Logging.File)
	}

	if cfg.History.Path == "" {
		switch cfg.GetHistoryArchive() {
		case domain.HistoryArchiveJSONL:
			cfg.History.Path = filepath.Join(configDir, "history.jsonl")
		case domain.HistoryArchiveSQLite:
			cfg.History.Path = filepath.Join(configDir, "history.db")
		}
	}
	if cfg.History.Path != "" {
		cfg.History.Path = expandPath(cfg.History.Path)
	}
	return cfg
}

func expandPath(path string) string {
	path = filesystem.ExpandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
