// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// service.go - Settings file operations: read, atomic write, backup,
// restore, retention cleanup, and content hashing.

package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/ccswitch/internal/logging"
	"github.com/jeranaias/ccswitch/internal/paths"
	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/util"
	"github.com/jeranaias/ccswitch/internal/validation"
)

// backupTimeFormat names backups by second-resolution local time.
const backupTimeFormat = "20060102_150405"

// backupPrefix is the filename prefix every backup carries.
const backupPrefix = paths.SettingsFileName + ".backup."

// settingsPerm keeps the settings file private: it can hold API tokens.
const settingsPerm = 0600

// =============================================================================
// SERVICE
// =============================================================================

// BackupInfo describes one backup file, newest first in listings.
type BackupInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Info summarizes the current settings file state.
type Info struct {
	Path        string    `json:"path"`
	Exists      bool      `json:"exists"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modified,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	BackupCount int       `json:"backup_count"`
}

// Service manages one settings file and its backup directory.
type Service struct {
	settingsPath string
	backupDir    string
	log          zerolog.Logger

	// now is swappable so tests can control backup names.
	now func() time.Time
}

// NewService creates a service for the settings file at settingsPath.
func NewService(settingsPath string) *Service {
	return &Service{
		settingsPath: settingsPath,
		backupDir:    paths.BackupDir(settingsPath),
		log:          logging.For("configfile"),
		now:          time.Now,
	}
}

// SettingsPath returns the managed settings file path.
func (s *Service) SettingsPath() string {
	return s.settingsPath
}

// BackupDir returns the backup directory path.
func (s *Service) BackupDir() string {
	return s.backupDir
}

// =============================================================================
// READ / WRITE
// =============================================================================

// ReadSettings returns the raw settings file content. A missing file is
// a NotFoundError so callers can distinguish it from read failures.
func (s *Service) ReadSettings() (string, error) {
	data, err := os.ReadFile(s.settingsPath)
	if os.IsNotExist(err) {
		return "", &profile.NotFoundError{Resource: "settings file", Ref: s.settingsPath}
	}
	if err != nil {
		return "", &profile.IOError{Op: "read", Path: s.settingsPath, Err: err}
	}
	return string(data), nil
}

// ReadSettingsMap returns the parsed settings file. Invalid JSON on disk
// is a ValidationError carrying the syntax diagnostics.
func (s *Service) ReadSettingsMap() (map[string]interface{}, error) {
	content, err := s.ReadSettings()
	if err != nil {
		return nil, err
	}
	if msgs := validation.ValidateJSONSyntax(content); len(msgs) > 0 {
		return nil, profile.NewValidationError(msgs)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, profile.NewValidationError([]string{fmt.Sprintf("Invalid JSON: %v", err)})
	}
	return parsed, nil
}

// WriteSettings atomically replaces the settings file with content.
// The content must be valid JSON; a concurrent reader sees either the
// old file or the new one in full, never a partial write.
func (s *Service) WriteSettings(content string) error {
	if msgs := validation.ValidateJSONSyntax(content); len(msgs) > 0 {
		return profile.NewValidationError(msgs)
	}
	if err := util.AtomicWriteFile(s.settingsPath, []byte(content), settingsPerm); err != nil {
		return &profile.IOError{Op: "write", Path: s.settingsPath, Err: err}
	}
	s.log.Info().Str("path", s.settingsPath).Msg("settings written")
	return nil
}

// =============================================================================
// BACKUP
// =============================================================================

// CreateBackup copies the current settings file into the backup
// directory under a timestamped name and returns the backup path.
// Backing up a missing settings file is a NotFoundError.
func (s *Service) CreateBackup() (string, error) {
	if _, err := os.Stat(s.settingsPath); os.IsNotExist(err) {
		return "", &profile.NotFoundError{Resource: "settings file", Ref: s.settingsPath}
	}
	if err := paths.EnsureDir(s.backupDir); err != nil {
		return "", &profile.IOError{Op: "backup", Path: s.backupDir, Err: err}
	}

	stamp := s.now().Format(backupTimeFormat)
	dst := filepath.Join(s.backupDir, backupPrefix+stamp)
	// Two backups within the same second get a numeric suffix rather
	// than clobbering each other. CopyFile wraps the O_EXCL failure, so
	// unwrap with errors.Is rather than os.IsExist.
	for i := 1; ; i++ {
		err := util.CopyFile(s.settingsPath, dst, settingsPerm)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", &profile.IOError{Op: "backup", Path: dst, Err: err}
		}
		dst = filepath.Join(s.backupDir, fmt.Sprintf("%s%s_%d", backupPrefix, stamp, i))
	}

	s.log.Info().Str("path", dst).Msg("backup created")
	return dst, nil
}

// CreateBackupTo copies the current settings file to an explicit
// destination path instead of the managed backup directory.
func (s *Service) CreateBackupTo(dst string) error {
	if _, err := os.Stat(s.settingsPath); os.IsNotExist(err) {
		return &profile.NotFoundError{Resource: "settings file", Ref: s.settingsPath}
	}
	if err := paths.EnsureDir(filepath.Dir(dst)); err != nil {
		return &profile.IOError{Op: "backup", Path: dst, Err: err}
	}
	if err := util.CopyFile(s.settingsPath, dst, settingsPerm); err != nil {
		return &profile.IOError{Op: "backup", Path: dst, Err: err}
	}
	s.log.Info().Str("path", dst).Msg("backup created")
	return nil
}

// ListBackups returns all backups, newest first.
func (s *Service) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &profile.IOError{Op: "list", Path: s.backupDir, Err: err}
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(s.backupDir, entry.Name()),
			Name:    entry.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		// The timestamped names sort chronologically, so reverse name
		// order breaks mtime ties.
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// RestoreBackup atomically replaces the settings file with the named
// backup. The backup content is validated first, and the current
// settings file (when present) is backed up before being replaced so a
// restore is itself reversible.
func (s *Service) RestoreBackup(backupPath string) error {
	if !paths.IsSafePath(backupPath, s.backupDir) {
		return &profile.IOError{Op: "restore", Path: backupPath,
			Err: fmt.Errorf("backup path escapes the backup directory")}
	}

	data, err := os.ReadFile(backupPath)
	if os.IsNotExist(err) {
		return &profile.NotFoundError{Resource: "backup", Ref: backupPath}
	}
	if err != nil {
		return &profile.IOError{Op: "restore", Path: backupPath, Err: err}
	}
	if msgs := validation.ValidateJSONSyntax(string(data)); len(msgs) > 0 {
		return profile.NewValidationError(msgs)
	}

	// Preserve what we are about to overwrite. A missing settings file
	// simply means there is nothing to preserve.
	if _, err := os.Stat(s.settingsPath); err == nil {
		if _, err := s.CreateBackup(); err != nil {
			return err
		}
	}

	if err := util.AtomicWriteFile(s.settingsPath, data, settingsPerm); err != nil {
		return &profile.IOError{Op: "restore", Path: s.settingsPath, Err: err}
	}
	s.log.Info().Str("backup", backupPath).Msg("settings restored")
	return nil
}

// CleanupOldBackups deletes all but the keep newest backups and returns
// how many were removed. A backup that cannot be deleted is logged and
// skipped; one stubborn file does not abort the sweep.
func (s *Service) CleanupOldBackups(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := s.ListBackups()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			s.log.Warn().Str("path", b.Path).Err(err).Msg("could not remove backup")
			continue
		}
		removed++
	}
	s.log.Info().Int("removed", removed).Int("kept", keep).Msg("backup cleanup complete")
	return removed, nil
}

// =============================================================================
// HASHING AND STATE
// =============================================================================

// CurrentHash returns the content hash of the settings file on disk.
func (s *Service) CurrentHash() (string, error) {
	content, err := s.ReadSettings()
	if err != nil {
		return "", err
	}
	return util.ContentHash(content), nil
}

// DiffersFrom reports whether the on-disk settings differ from the
// given content hash. A missing settings file always differs.
func (s *Service) DiffersFrom(hash string) (bool, error) {
	current, err := s.CurrentHash()
	if err != nil {
		var notFound *profile.NotFoundError
		if errors.As(err, &notFound) {
			return true, nil
		}
		return false, err
	}
	return current != hash, nil
}

// Describe returns a summary of the settings file and its backups.
func (s *Service) Describe() (Info, error) {
	info := Info{Path: s.settingsPath}

	fi, err := os.Stat(s.settingsPath)
	if err == nil {
		info.Exists = true
		info.Size = fi.Size()
		info.ModTime = fi.ModTime()
		if hash, err := s.CurrentHash(); err == nil {
			info.ContentHash = hash
		}
	} else if !os.IsNotExist(err) {
		return info, &profile.IOError{Op: "stat", Path: s.settingsPath, Err: err}
	}

	backups, err := s.ListBackups()
	if err != nil {
		return info, err
	}
	info.BackupCount = len(backups)
	return info, nil
}
