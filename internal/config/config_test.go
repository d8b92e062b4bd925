// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backup.Retention != DefaultBackupRetention {
		t.Errorf("retention = %d, want %d", cfg.Backup.Retention, DefaultBackupRetention)
	}
	if cfg.Log.Level != "warn" || cfg.UI.Color != "auto" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.UI.ConfirmDestructive {
		t.Error("destructive confirmations should default on")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("expected log.level error, got %v", err)
	}

	cfg = Default()
	cfg.UI.Color = "sometimes"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ui.color") {
		t.Errorf("expected ui.color error, got %v", err)
	}

	cfg = Default()
	cfg.Backup.Retention = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "retention") {
		t.Errorf("expected retention error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CCSWITCH_SETTINGS_PATH", "/tmp/custom-settings.json")
	t.Setenv("CCSWITCH_LOG_LEVEL", "debug")
	t.Setenv("CCSWITCH_BACKUP_RETENTION", "3")
	t.Setenv("CCSWITCH_NO_CONFIRM", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.SettingsPath != "/tmp/custom-settings.json" {
		t.Errorf("settings path = %q", cfg.SettingsPath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Backup.Retention != 3 {
		t.Errorf("retention = %d", cfg.Backup.Retention)
	}
	if cfg.UI.ConfirmDestructive {
		t.Error("CCSWITCH_NO_CONFIRM should disable confirmations")
	}
}

func TestApplyEnvOverridesBadRetentionIgnored(t *testing.T) {
	t.Setenv("CCSWITCH_BACKUP_RETENTION", "many")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Backup.Retention != DefaultBackupRetention {
		t.Errorf("non-numeric retention should be ignored, got %d", cfg.Backup.Retention)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backup.Retention != DefaultBackupRetention {
		t.Errorf("retention = %d", cfg.Backup.Retention)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.SettingsPath = "/work/settings.json"
	cfg.Backup.Retention = 5
	cfg.Log.Level = "info"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The config file can hold tokens' paths; keep it private.
	info, err := os.Stat(Path())
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perm = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SettingsPath != cfg.SettingsPath || loaded.Backup.Retention != 5 || loaded.Log.Level != "info" {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
}

func TestResolveSettingsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.SettingsPath = "/explicit/settings.json"
	if got := cfg.ResolveSettingsPath(); got != "/explicit/settings.json" {
		t.Errorf("explicit override ignored: %q", got)
	}

	cfg.SettingsPath = ""
	want := filepath.Join(home, ".claude", "settings.json")
	if got := cfg.ResolveSettingsPath(); got != want {
		t.Errorf("default path = %q, want %q", got, want)
	}

	// Detection wins once the file actually exists.
	if err := os.MkdirAll(filepath.Dir(want), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	if got := cfg.ResolveSettingsPath(); got != want {
		t.Errorf("detected path = %q, want %q", got, want)
	}
}
