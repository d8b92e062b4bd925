// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package manager

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jeranaias/ccswitch/internal/configfile"
	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/store"
	"github.com/jeranaias/ccswitch/internal/util"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "ccswitch.db"))
	if err != nil {
		t.Fatalf("opening store failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, configfile.NewService(filepath.Join(dir, "settings.json")))
}

const devConfig = `{"env": {"ANTHROPIC_BASE_URL": "https://api.anthropic.com"}, "model": "claude-sonnet-4"}`
const prodConfig = `{"env": {"ANTHROPIC_BASE_URL": "https://prod.example.com"}, "model": "claude-opus-4"}`

func mustCreate(t *testing.T, m *Manager, name, config string) *profile.Profile {
	t.Helper()
	p, err := m.Create(name, config)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	return p
}

func TestCreateValid(t *testing.T) {
	m := testManager(t)
	p := mustCreate(t, m, "dev", devConfig)
	if p.ID <= 0 || p.Name != "dev" || p.IsActive {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.ContentHash != util.ContentHash(devConfig) {
		t.Error("hash should be computed on create")
	}
}

func TestCreateInvalidCollectsAllMessages(t *testing.T) {
	m := testManager(t)

	_, err := m.Create("bad/name", `{broken`)
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	joined := verr.Error()
	if !strings.Contains(joined, "Profile name contains invalid character: '/'") {
		t.Errorf("missing name diagnostic: %q", joined)
	}
	if !strings.Contains(joined, "JSON syntax error") {
		t.Errorf("missing syntax diagnostic: %q", joined)
	}
}

func TestCreateValidationBeforeConflict(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)

	// The name is taken AND the content is invalid; validation wins.
	_, err := m.Create("dev", `{broken`)
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError before conflict, got %v", err)
	}

	_, err = m.Create("dev", devConfig)
	var conflict *profile.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestUpdateContentRehashes(t *testing.T) {
	m := testManager(t)
	p := mustCreate(t, m, "dev", devConfig)

	updated, err := m.Update("dev", nil, strPtr(prodConfig))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ContentHash != util.ContentHash(prodConfig) {
		t.Error("hash should be recomputed on content update")
	}
	if updated.ContentHash == p.ContentHash {
		t.Error("hash should change with the content")
	}
}

func TestUpdateInvalidContentRejected(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)

	_, err := m.Update("dev", nil, strPtr(`{"temperature": 3.5}`))
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Error(), "temperature must be between 0.0 and 2.0") {
		t.Errorf("unexpected diagnostics: %q", verr.Error())
	}

	p, _ := m.GetByNameOrID("dev")
	if p.ConfigJSON != devConfig {
		t.Error("failed update must not modify the profile")
	}
}

func TestUpdateActiveDoesNotRewriteSettings(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)
	if _, err := m.Activate("dev"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if _, err := m.Update("dev", nil, strPtr(prodConfig)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	onDisk, err := m.Files().ReadSettings()
	if err != nil {
		t.Fatalf("ReadSettings failed: %v", err)
	}
	if onDisk != devConfig {
		t.Error("updating the active profile should not touch the settings file")
	}

	// The divergence is visible as drift.
	st, err := m.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.Drifted {
		t.Error("status should report drift after updating the active profile")
	}
}

func TestDeleteActiveProtected(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)
	if _, err := m.Activate("dev"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	err := m.Delete("dev")
	var protected *profile.ProtectedResourceError
	if !errors.As(err, &protected) {
		t.Fatalf("expected ProtectedResourceError, got %v", err)
	}

	if err := m.Deactivate(); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if err := m.Delete("dev"); err != nil {
		t.Fatalf("Delete after deactivation failed: %v", err)
	}
}

func TestDuplicateCopiesVerbatim(t *testing.T) {
	m := testManager(t)
	src := mustCreate(t, m, "dev", devConfig)
	if _, err := m.Activate("dev"); err != nil {
		t.Fatal(err)
	}

	dup, err := m.Duplicate("dev", "dev-copy")
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if dup.ConfigJSON != src.ConfigJSON || dup.ContentHash != src.ContentHash {
		t.Error("duplicate should share content and hash with the source")
	}
	if dup.IsActive {
		t.Error("a duplicate starts inactive even when the source is active")
	}

	_, err = m.Duplicate("dev", "dev-copy")
	var conflict *profile.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on duplicate name, got %v", err)
	}
}

func TestActivateSwitchesProfiles(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)
	mustCreate(t, m, "prod", prodConfig)

	if _, err := m.Activate("dev"); err != nil {
		t.Fatalf("Activate(dev) failed: %v", err)
	}
	onDisk, _ := m.Files().ReadSettings()
	if onDisk != devConfig {
		t.Error("settings file should hold dev config")
	}

	if _, err := m.Activate("prod"); err != nil {
		t.Fatalf("Activate(prod) failed: %v", err)
	}
	onDisk, _ = m.Files().ReadSettings()
	if onDisk != prodConfig {
		t.Error("settings file should hold prod config")
	}

	active, err := m.Active()
	if err != nil || active == nil || active.Name != "prod" {
		t.Fatalf("active = %+v, err = %v", active, err)
	}

	// The dev settings were preserved as a backup before the switch.
	backups, err := m.Files().ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	found := false
	for _, b := range backups {
		data, _ := os.ReadFile(b.Path)
		if string(data) == devConfig {
			found = true
		}
	}
	if !found {
		t.Error("switching profiles should back up the replaced settings")
	}
}

func TestActivateMissingProfile(t *testing.T) {
	m := testManager(t)
	_, err := m.Activate("ghost")
	var notFound *profile.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestActivateWithoutExistingSettings(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)

	// No settings file yet; the missing-backup case must not block.
	if _, err := m.Activate("dev"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	onDisk, err := m.Files().ReadSettings()
	if err != nil || onDisk != devConfig {
		t.Errorf("settings = %q, err = %v", onDisk, err)
	}
}

func TestGetByNameOrID(t *testing.T) {
	m := testManager(t)
	p := mustCreate(t, m, "dev", devConfig)
	mustCreate(t, m, "42", prodConfig)

	byID, err := m.GetByNameOrID(itoa(p.ID))
	if err != nil || byID.Name != "dev" {
		t.Errorf("lookup by id failed: %v", err)
	}

	byName, err := m.GetByNameOrID("dev")
	if err != nil || byName.ID != p.ID {
		t.Errorf("lookup by name failed: %v", err)
	}

	// "42" has no matching id, so the numeric reference falls back to
	// the name lookup.
	numericName, err := m.GetByNameOrID("42")
	if err != nil || numericName.Name != "42" {
		t.Errorf("numeric name fallback failed: %v", err)
	}
}

func TestSearch(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)
	mustCreate(t, m, "prod", prodConfig)
	mustCreate(t, m, "empty", `{"nested": {"list": ["alpha", {"deep": "needle-value"}]}}`)

	byName, err := m.Search("DEV")
	if err != nil || len(byName) != 1 || byName[0].Name != "dev" {
		t.Errorf("name search failed: %v, %v", byName, err)
	}

	byValue, err := m.Search("prod.example.com")
	if err != nil || len(byValue) != 1 || byValue[0].Name != "prod" {
		t.Errorf("value search failed: %v", err)
	}

	deep, err := m.Search("needle")
	if err != nil || len(deep) != 1 || deep[0].Name != "empty" {
		t.Errorf("nested search failed: %v", err)
	}

	byKey, err := m.Search("anthropic_base_url")
	if err != nil || len(byKey) != 2 {
		t.Errorf("key search matched %d, want 2", len(byKey))
	}

	none, err := m.Search("zzz-no-match")
	if err != nil || len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestStatusNoActiveProfile(t *testing.T) {
	m := testManager(t)
	mustCreate(t, m, "dev", devConfig)

	st, err := m.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.Active != nil {
		t.Error("no profile should be active")
	}
	if st.Drifted {
		t.Error("drift is undefined without an active profile")
	}
	if st.Profiles != 1 {
		t.Errorf("profile count = %d, want 1", st.Profiles)
	}
}

func TestValidateSummary(t *testing.T) {
	m := testManager(t)
	sum := m.Validate("dev", `{"env": {"ANTHROPIC_AUTH_TOKEN": "sk-ant-REDACTED"}}`)
	if !sum.Valid {
		t.Errorf("expected valid summary, errors: %v", sum.Errors)
	}
	if len(sum.Sensitive) == 0 {
		t.Error("expected sensitive data findings")
	}
}

func strPtr(s string) *string { return &s }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
