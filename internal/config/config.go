// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ccswitch.
//
// Supports TOML configuration with sensible defaults and environment
// variable overrides.
//
// Configuration file location:
//   - ~/.ccswitch/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ccswitch/internal/paths"
	"github.com/jeranaias/ccswitch/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ccswitch configuration.
type Config struct {
	// SettingsPath overrides the auto-detected Claude Code settings.json
	// location. Empty means detect (~/.claude/settings.json).
	SettingsPath string `toml:"settings_path" json:"settings_path"`

	// DatabasePath is the profile database location.
	DatabasePath string `toml:"database_path" json:"database_path"`

	// Backup configuration
	Backup BackupConfig `toml:"backup" json:"backup"`

	// Logging configuration
	Log LogConfig `toml:"log" json:"log"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackupConfig controls settings file backups.
type BackupConfig struct {
	// Retention is how many backups CleanupOldBackups keeps.
	Retention int `toml:"retention" json:"retention"`
	// AutoCleanup runs retention cleanup after every activation backup.
	AutoCleanup bool `toml:"auto_cleanup" json:"auto_cleanup"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`
	// File is an optional log file path (empty = stderr only).
	File string `toml:"file" json:"file"`
}

// UIConfig controls terminal output.
type UIConfig struct {
	// Color is one of "auto", "always", "never".
	Color string `toml:"color" json:"color"`
	// ConfirmDestructive asks before delete and restore operations.
	ConfirmDestructive bool `toml:"confirm_destructive" json:"confirm_destructive"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultBackupRetention is how many settings backups are kept.
const DefaultBackupRetention = 10

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		SettingsPath: "",
		DatabasePath: paths.DefaultDatabasePath(),
		Backup: BackupConfig{
			Retention:   DefaultBackupRetention,
			AutoCleanup: true,
		},
		Log: LogConfig{
			Level: "warn",
			File:  "",
		},
		UI: UIConfig{
			Color:              "auto",
			ConfirmDestructive: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Path returns the TOML config file location (~/.ccswitch/config.toml).
func Path() string {
	return filepath.Join(paths.DataDir(), "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, fills defaults and applies environment
// overrides. A missing config file is not an error: defaults apply.
func Load() (*Config, error) {
	cfg := Default()

	path := Path()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CCSWITCH_* environment variables on top of
// the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if path := os.Getenv("CCSWITCH_SETTINGS_PATH"); path != "" {
		c.SettingsPath = path
	}
	if path := os.Getenv("CCSWITCH_DB_PATH"); path != "" {
		c.DatabasePath = path
	}
	if level := os.Getenv("CCSWITCH_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := os.Getenv("CCSWITCH_LOG_FILE"); file != "" {
		c.Log.File = file
	}
	if retention := os.Getenv("CCSWITCH_BACKUP_RETENTION"); retention != "" {
		if n, err := strconv.Atoi(retention); err == nil {
			c.Backup.Retention = n
		}
	}
	if color := os.Getenv("CCSWITCH_COLOR"); color != "" {
		c.UI.Color = color
	}
	if confirm := os.Getenv("CCSWITCH_NO_CONFIRM"); confirm != "" {
		c.UI.ConfirmDestructive = !(confirm == "1" || strings.ToLower(confirm) == "true")
	}
}

// SetDefaults fills any zero-value fields that must never stay empty.
func (c *Config) SetDefaults() {
	if c.DatabasePath == "" {
		c.DatabasePath = paths.DefaultDatabasePath()
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.UI.Color == "" {
		c.UI.Color = "auto"
	}
	if c.Backup.Retention == 0 {
		c.Backup.Retention = DefaultBackupRetention
	}
}

// Validate checks field values. Fails fast with the first problem: a bad
// config file should be fixed, not worked around.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}

	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color must be auto, always or never (got %q)", c.UI.Color)
	}

	if c.Backup.Retention < 0 {
		return fmt.Errorf("backup.retention must not be negative (got %d)", c.Backup.Retention)
	}
	return nil
}

// ResolveSettingsPath returns the settings file to manage: the explicit
// override when set, the auto-detected file when present, otherwise the
// default location for first-time creation.
func (c *Config) ResolveSettingsPath() string {
	if c.SettingsPath != "" {
		return c.SettingsPath
	}
	if detected := paths.DetectSettingsPath(); detected != "" {
		return detected
	}
	return paths.DefaultSettingsPath()
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML, atomically and private.
func Save(cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(Path())); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(Path(), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults with a warning rather than
// aborting: ccswitch should still run with a broken config file.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.ApplyEnvOverrides()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	globalConfigOnce.Do(func() {})
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
