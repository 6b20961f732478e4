// Package config loads the application configuration from
// ~/.energyiq/config.yaml, layered with environment variables.
//
// Precedence: defaults < config file < environment. A missing config
// file is not an error; the defaults simply apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/logging"
)

// Environment variable overrides.
const (
	EnvCountry     = "ENERGYIQ_COUNTRY"
	EnvHistoryPath = "ENERGYIQ_HISTORY_PATH"
	EnvLogLevel    = "ENERGYIQ_LOG_LEVEL"
)

const (
	appDirName  = ".energyiq"
	configName  = "config.yaml"
	historyName = "history.json"
)

// Config is the full application configuration.
type Config struct {
	// Country selects the electricity tariff when no --country flag is
	// given.
	Country string `yaml:"country"`

	History HistoryConfig  `yaml:"history"`
	Logging logging.Config `yaml:"logging"`
}

// HistoryConfig controls result persistence.
type HistoryConfig struct {
	Path string `yaml:"path"`

	// MaxEntries caps the stored results; 0 means the default cap.
	MaxEntries int `yaml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Country: "india",
		History: HistoryConfig{
			Path:       filepath.Join(appDir(), historyName),
			MaxEntries: history.MaxEntries,
		},
		Logging: logging.Config{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the expected config file location.
func DefaultPath() string {
	return filepath.Join(appDir(), configName)
}

func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, appDirName)
}

// Load reads the config file at path (DefaultPath when empty), then
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	// Side-effect only: a .env in the working directory populates the
	// process environment for GEMINI_API_KEY and friends.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, unmarshalErr)
		}
		fillDefaults(&cfg)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Country == "" {
		cfg.Country = def.Country
	}
	if cfg.History.Path == "" {
		cfg.History.Path = def.History.Path
	}
	if cfg.History.MaxEntries <= 0 {
		cfg.History.MaxEntries = def.History.MaxEntries
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCountry); v != "" {
		cfg.Country = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvHistoryPath); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Save writes cfg to path (DefaultPath when empty), creating the parent
// directory as needed.
func Save(cfg Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write config file: %w", writeErr)
	}
	return nil
}

var (
	globalMu  sync.RWMutex
	globalCfg = Default()
)

// Global returns the process-wide configuration.
func Global() Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// SetGlobal replaces the process-wide configuration, normally once at
// startup after Load.
func SetGlobal(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// ParsePort parses an HTTP port value, used by the serve command's
// PORT environment fallback.
func ParsePort(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > 65535 {
		return fallback
	}
	return n
}
