// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package configfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/util"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	return NewService(filepath.Join(dir, "settings.json"))
}

func writeSettingsRaw(t *testing.T, s *Service, content string) {
	t.Helper()
	if err := os.WriteFile(s.SettingsPath(), []byte(content), 0600); err != nil {
		t.Fatalf("seeding settings failed: %v", err)
	}
}

func TestReadSettingsMissing(t *testing.T) {
	s := testService(t)

	_, err := s.ReadSettings()
	var notFound *profile.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestWriteAndReadSettings(t *testing.T) {
	s := testService(t)
	content := `{"env": {"ANTHROPIC_BASE_URL": "https://api.anthropic.com"}}`

	if err := s.WriteSettings(content); err != nil {
		t.Fatalf("WriteSettings failed: %v", err)
	}

	got, err := s.ReadSettings()
	if err != nil {
		t.Fatalf("ReadSettings failed: %v", err)
	}
	if got != content {
		t.Errorf("content round-trip mismatch")
	}

	parsed, err := s.ReadSettingsMap()
	if err != nil {
		t.Fatalf("ReadSettingsMap failed: %v", err)
	}
	if _, ok := parsed["env"]; !ok {
		t.Error("parsed settings missing env key")
	}
}

func TestWriteSettingsRejectsInvalidJSON(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"keep": true}`)

	err := s.WriteSettings(`{not json`)
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The existing file must be untouched by the rejected write.
	got, _ := s.ReadSettings()
	if got != `{"keep": true}` {
		t.Error("rejected write modified the settings file")
	}
}

func TestReadSettingsMapInvalidJSON(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"a": `)

	_, err := s.ReadSettingsMap()
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateBackup(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"a": 1}`)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

	path, err := s.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Base(path) != "settings.json.backup.20250314_092653" {
		t.Errorf("backup name = %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading backup failed: %v", err)
	}
	if string(data) != `{"a": 1}` {
		t.Error("backup content mismatch")
	}
}

func TestCreateBackupSameSecond(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"a": 1}`)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

	first, err := s.CreateBackup()
	if err != nil {
		t.Fatalf("first backup failed: %v", err)
	}
	second, err := s.CreateBackup()
	if err != nil {
		t.Fatalf("second backup failed: %v", err)
	}
	if first == second {
		t.Error("backups in the same second must not share a path")
	}
}

func TestCreateBackupMissingSettings(t *testing.T) {
	s := testService(t)

	_, err := s.CreateBackup()
	var notFound *profile.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreateBackupToExplicitPath(t *testing.T) {
	s := testService(t)
	content := `{"model": "claude-sonnet-4-5"}`
	writeSettingsRaw(t, s, content)

	dst := filepath.Join(t.TempDir(), "snapshots", "settings.snapshot.json")
	if err := s.CreateBackupTo(dst); err != nil {
		t.Fatalf("CreateBackupTo failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading explicit backup failed: %v", err)
	}
	if string(data) != content {
		t.Errorf("backup content = %q, want %q", data, content)
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{}`)

	stamps := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range stamps {
		s.now = func() time.Time { return ts }
		path, err := s.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		// Align mtimes with the names so ordering is deterministic.
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	backups, err := s.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("got %d backups, want 3", len(backups))
	}
	if backups[0].Name != "settings.json.backup.20250103_000000" {
		t.Errorf("newest backup = %q", backups[0].Name)
	}
	if backups[2].Name != "settings.json.backup.20250101_000000" {
		t.Errorf("oldest backup = %q", backups[2].Name)
	}
}

func TestListBackupsNoDir(t *testing.T) {
	s := testService(t)
	backups, err := s.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"version": 1}`)

	backup, err := s.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if err := s.WriteSettings(`{"version": 2}`); err != nil {
		t.Fatalf("WriteSettings failed: %v", err)
	}
	if err := s.RestoreBackup(backup); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	got, _ := s.ReadSettings()
	if got != `{"version": 1}` {
		t.Errorf("restored content = %q", got)
	}

	// The restore preserved the version-2 file as a new backup.
	backups, _ := s.ListBackups()
	found := false
	for _, b := range backups {
		data, _ := os.ReadFile(b.Path)
		if string(data) == `{"version": 2}` {
			found = true
		}
	}
	if !found {
		t.Error("restore should back up the settings it replaces")
	}
}

func TestRestoreBackupRejectsCorrupt(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{"good": true}`)

	if err := os.MkdirAll(s.BackupDir(), 0755); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(s.BackupDir(), "settings.json.backup.20250101_000000")
	if err := os.WriteFile(corrupt, []byte(`{broken`), 0600); err != nil {
		t.Fatal(err)
	}

	err := s.RestoreBackup(corrupt)
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := s.ReadSettings()
	if got != `{"good": true}` {
		t.Error("failed restore modified the settings file")
	}
}

func TestRestoreBackupOutsideBackupDir(t *testing.T) {
	s := testService(t)
	outside := filepath.Join(t.TempDir(), "evil.json")
	if err := os.WriteFile(outside, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}

	err := s.RestoreBackup(outside)
	var ioErr *profile.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError for path outside backup dir, got %v", err)
	}
}

func TestCleanupOldBackups(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{}`)

	for day := 1; day <= 5; day++ {
		ts := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return ts }
		path, err := s.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.CleanupOldBackups(2)
	if err != nil {
		t.Fatalf("CleanupOldBackups failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	backups, _ := s.ListBackups()
	if len(backups) != 2 {
		t.Fatalf("kept %d backups, want 2", len(backups))
	}
	if backups[0].Name != "settings.json.backup.20250105_000000" ||
		backups[1].Name != "settings.json.backup.20250104_000000" {
		t.Error("cleanup removed the wrong backups")
	}
}

func TestCleanupOldBackupsUnderLimit(t *testing.T) {
	s := testService(t)
	writeSettingsRaw(t, s, `{}`)
	if _, err := s.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	removed, err := s.CleanupOldBackups(10)
	if err != nil {
		t.Fatalf("CleanupOldBackups failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestHashingAndDrift(t *testing.T) {
	s := testService(t)
	content := `{"model": "claude-sonnet-4"}`
	writeSettingsRaw(t, s, content)

	hash, err := s.CurrentHash()
	if err != nil {
		t.Fatalf("CurrentHash failed: %v", err)
	}
	if hash != util.ContentHash(content) {
		t.Error("CurrentHash disagrees with util.ContentHash")
	}

	// Semantically identical JSON with different whitespace hashes the same.
	if util.ContentHash(`{"model":"claude-sonnet-4"}`) != hash {
		t.Error("whitespace should not affect the content hash")
	}

	differs, err := s.DiffersFrom(hash)
	if err != nil || differs {
		t.Errorf("DiffersFrom(same) = %v, %v", differs, err)
	}

	writeSettingsRaw(t, s, `{"model": "claude-opus-4"}`)
	differs, err = s.DiffersFrom(hash)
	if err != nil || !differs {
		t.Errorf("DiffersFrom(changed) = %v, %v", differs, err)
	}
}

func TestDiffersFromMissingFile(t *testing.T) {
	s := testService(t)
	differs, err := s.DiffersFrom("anything")
	if err != nil {
		t.Fatalf("DiffersFrom failed: %v", err)
	}
	if !differs {
		t.Error("a missing settings file always differs")
	}
}

func TestDescribe(t *testing.T) {
	s := testService(t)

	info, err := s.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Exists {
		t.Error("Exists should be false before any write")
	}

	writeSettingsRaw(t, s, `{"a": 1}`)
	if _, err := s.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	info, err = s.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !info.Exists || info.Size == 0 || info.ContentHash == "" {
		t.Errorf("incomplete info: %+v", info)
	}
	if info.BackupCount != 1 {
		t.Errorf("BackupCount = %d, want 1", info.BackupCount)
	}
}

func TestDriftWatcher(t *testing.T) {
	s := testService(t)
	content := `{"v": 1}`
	writeSettingsRaw(t, s, content)

	w, err := NewDriftWatcher(s, util.ContentHash(content), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDriftWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	writeSettingsRaw(t, s, `{"v": 2}`)

	select {
	case ev := <-w.Events():
		if ev.ActualHash != util.ContentHash(`{"v": 2}`) {
			t.Errorf("unexpected actual hash in drift event")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected a drift event")
	}
}

func TestDriftWatcherIgnoresMatchingWrites(t *testing.T) {
	s := testService(t)
	content := `{"v": 1}`
	writeSettingsRaw(t, s, content)

	w, err := NewDriftWatcher(s, util.ContentHash(content), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDriftWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Rewriting identical content is not drift.
	writeSettingsRaw(t, s, content)

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected drift event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
