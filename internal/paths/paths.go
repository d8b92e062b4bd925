// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package paths locates the externally-owned Claude Code settings file
// and the directories ccswitch keeps its own state in.
//
// The settings file is never assumed to exist: DetectSettingsPath returns
// an empty string when no readable settings.json is found, and callers
// decide whether that is fatal (CLI apply) or fine (first run).
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// SettingsFileName is the name of the Claude Code settings file.
const SettingsFileName = "settings.json"

// BackupDirName is the backup directory colocated with the settings file.
const BackupDirName = "backups"

// DetectSettingsPath auto-detects the Claude Code settings.json location
// (~/.claude/settings.json on every platform; on Windows the home
// directory resolves through USERPROFILE). Returns the path only when the
// file exists and is readable, otherwise the empty string.
func DetectSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidate := filepath.Join(home, ".claude", SettingsFileName)

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return ""
	}

	f, err := os.Open(candidate)
	if err != nil {
		return ""
	}
	f.Close()

	return candidate
}

// DefaultSettingsPath returns where settings.json would live even if it
// does not exist yet. Used when creating the file for the first time.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", SettingsFileName)
}

// BackupDir returns the backup directory for a given settings file:
// a "backups" directory next to it.
func BackupDir(settingsPath string) string {
	return filepath.Join(filepath.Dir(settingsPath), BackupDirName)
}

// DataDir returns the directory ccswitch stores its own state in
// (profile database, app config, logs).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ccswitch"
	}
	return filepath.Join(home, ".ccswitch")
}

// DefaultDatabasePath returns the default profile database location.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "profiles.db")
}

// DefaultLogPath returns the default log file location.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), "logs", "ccswitch.log")
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// IsSafePath reports whether path resolves inside base after symlink and
// ".." resolution. Guards user-supplied backup destinations against path
// traversal. An empty base means the user home directory.
func IsSafePath(path, base string) bool {
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		base = home
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
