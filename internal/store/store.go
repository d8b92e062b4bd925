// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// store.go - SQLite-backed profile store.
//
// Uses the pure Go SQLite driver with a single connection: SQLite allows
// one writer at a time and a busy timeout bounds every wait, so no
// operation in this layer blocks indefinitely. Lock contention past the
// timeout surfaces as a retryable LockTimeoutError.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ccswitch/internal/logging"
	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/util"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// busyTimeoutMs bounds how long a connection waits on a locked database
// before the operation fails as retryable.
const busyTimeoutMs = 30000

// timeFormat is the canonical timestamp encoding in the database.
const timeFormat = time.RFC3339Nano

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed profile store.
type Store struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens (creating if necessary) the profile database at path and
// initializes the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// With a single connection every transaction is naturally serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs),
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		log:  logging.For("store"),
	}
	s.log.Debug().Str("path", path).Msg("database opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// CREATE
// =============================================================================

// Create persists a new profile and returns its id. The name-uniqueness
// check and the insert run in one transaction, so a colliding name fails
// with a ConflictError before any row is written.
func (s *Store) Create(name, configJSON, contentHash string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, s.wrapErr("create", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM profiles WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return 0, s.wrapErr("create", err)
	}
	if exists > 0 {
		return 0, &profile.ConflictError{Name: name}
	}

	now := time.Now().UTC().Format(timeFormat)
	result, err := tx.Exec(`
		INSERT INTO profiles (name, config_json, content_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, name, configJSON, contentHash, now, now)
	if err != nil {
		return 0, s.wrapErr("create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, s.wrapErr("create", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, s.wrapErr("create", err)
	}

	s.log.Info().Str("name", name).Int64("id", id).Msg("profile created")
	return id, nil
}

// =============================================================================
// READ
// =============================================================================

const profileColumns = `id, name, config_json, content_hash, is_active, created_at, updated_at`

// Get retrieves a profile by id. The stored content hash is verified
// against the content; a mismatch returns an IntegrityError.
func (s *Store) Get(id int64) (*profile.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, &profile.NotFoundError{Resource: "profile", Ref: fmt.Sprintf("%d", id)}
	}
	if err != nil {
		return nil, s.wrapErr("get", err)
	}
	return p, verifyIntegrity(p)
}

// GetByName retrieves a profile by its exact (case-sensitive) name.
func (s *Store) GetByName(name string) (*profile.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, &profile.NotFoundError{Resource: "profile", Ref: name}
	}
	if err != nil {
		return nil, s.wrapErr("get_by_name", err)
	}
	return p, verifyIntegrity(p)
}

// GetAll returns every profile ordered by name.
func (s *Store) GetAll() ([]*profile.Profile, error) {
	rows, err := s.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, s.wrapErr("get_all", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, s.wrapErr("get_all", err)
		}
		// Same integrity contract as the single-record reads: corrupt
		// content is reported, never silently listed.
		if err := verifyIntegrity(p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("get_all", err)
	}
	return profiles, nil
}

// GetActive returns the active profile, or (nil, nil) when no profile is
// active. Having no active profile is a normal state, not an error.
func (s *Store) GetActive() (*profile.Profile, error) {
	row := s.db.QueryRow(`SELECT ` + profileColumns + ` FROM profiles WHERE is_active = 1`)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrapErr("get_active", err)
	}
	return p, verifyIntegrity(p)
}

// Count returns the number of stored profiles.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, s.wrapErr("count", err)
	}
	return n, nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update applies the non-nil fields to the profile and refreshes
// updated_at. A rename that would collide with another profile's name
// fails with a ConflictError before any change is written. Returns false
// when the id does not exist.
func (s *Store) Update(id int64, name, configJSON, contentHash *string) (bool, error) {
	if name == nil && configJSON == nil && contentHash == nil {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, s.wrapErr("update", err)
	}
	defer tx.Rollback()

	if name != nil {
		var clash int
		err = tx.QueryRow(`SELECT COUNT(*) FROM profiles WHERE name = ? AND id != ?`, *name, id).Scan(&clash)
		if err != nil {
			return false, s.wrapErr("update", err)
		}
		if clash > 0 {
			return false, &profile.ConflictError{Name: *name}
		}
	}

	var sets []string
	var params []interface{}
	if name != nil {
		sets = append(sets, "name = ?")
		params = append(params, *name)
	}
	if configJSON != nil {
		sets = append(sets, "config_json = ?")
		params = append(params, *configJSON)
	}
	if contentHash != nil {
		sets = append(sets, "content_hash = ?")
		params = append(params, *contentHash)
	}
	sets = append(sets, "updated_at = ?")
	params = append(params, time.Now().UTC().Format(timeFormat), id)

	result, err := tx.Exec(`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, params...)
	if err != nil {
		return false, s.wrapErr("update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, s.wrapErr("update", err)
	}

	if err := tx.Commit(); err != nil {
		return false, s.wrapErr("update", err)
	}

	if affected > 0 {
		s.log.Info().Int64("id", id).Msg("profile updated")
	}
	return affected > 0, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a profile row. Returns false when the id does not
// exist. The active-profile protection lives in the manager; this layer
// deletes whatever it is told to.
func (s *Store) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return false, s.wrapErr("delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, s.wrapErr("delete", err)
	}
	if affected > 0 {
		s.log.Info().Int64("id", id).Msg("profile deleted")
	}
	return affected > 0, nil
}

// =============================================================================
// ACTIVATION
// =============================================================================

// SetActive makes the given profile the single active one. The
// deactivate-all and activate-one statements run in one transaction, so
// no reader ever observes two active profiles, or zero if one was
// already active. An unknown id fails with NotFoundError and changes no
// rows.
func (s *Store) SetActive(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return s.wrapErr("set_active", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE profiles SET is_active = 0 WHERE is_active = 1`); err != nil {
		return s.wrapErr("set_active", err)
	}

	result, err := tx.Exec(`UPDATE profiles SET is_active = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return s.wrapErr("set_active", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return s.wrapErr("set_active", err)
	}
	if affected == 0 {
		// Rolls back via the deferred Rollback: the deactivate-all above
		// never becomes visible.
		return &profile.NotFoundError{Resource: "profile", Ref: fmt.Sprintf("%d", id)}
	}

	if err := tx.Commit(); err != nil {
		return s.wrapErr("set_active", err)
	}

	s.log.Info().Int64("id", id).Msg("profile activated")
	return nil
}

// ClearActive deactivates every profile.
func (s *Store) ClearActive() error {
	if _, err := s.db.Exec(`UPDATE profiles SET is_active = 0 WHERE is_active = 1`); err != nil {
		return s.wrapErr("clear_active", err)
	}
	s.log.Info().Msg("active profile cleared")
	return nil
}

// =============================================================================
// APPLICATION SETTINGS
// =============================================================================

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", s.wrapErr("get_setting", err)
	}
	return value, nil
}

// SetSetting stores a key/value pair, replacing any existing value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, ?)
	`, key, value, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return s.wrapErr("set_setting", err)
	}
	return nil
}

// =============================================================================
// BACKUP LOG
// =============================================================================

// LogBackup records a backup event for audit purposes and returns the
// generated operation id. profileID may be nil for backups not triggered
// by a profile (manual backups, restores).
func (s *Store) LogBackup(profileID *int64, backupPath string) (string, error) {
	opID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO backup_log (op_id, profile_id, backup_path, created_at)
		VALUES (?, ?, ?, ?)
	`, opID, profileID, backupPath, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return "", s.wrapErr("log_backup", err)
	}
	s.log.Debug().Str("op_id", opID).Str("path", backupPath).Msg("backup logged")
	return opID, nil
}

// CleanupBackupLog deletes all but the keep most recent backup log
// entries and returns how many were removed.
func (s *Store) CleanupBackupLog(keep int) (int, error) {
	result, err := s.db.Exec(`
		DELETE FROM backup_log WHERE id NOT IN (
			SELECT id FROM backup_log ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, s.wrapErr("cleanup_backup_log", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, s.wrapErr("cleanup_backup_log", err)
	}
	return int(affected), nil
}

// =============================================================================
// SCANNING AND ERRORS
// =============================================================================

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*profile.Profile, error) {
	var p profile.Profile
	var isActive int
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.ContentHash, &isActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.IsActive = isActive != 0
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func parseTime(value string) time.Time {
	if t, err := time.Parse(timeFormat, value); err == nil {
		return t
	}
	// Rows written by SQLite's CURRENT_TIMESTAMP default use this form.
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func verifyIntegrity(p *profile.Profile) error {
	if !p.VerifyIntegrity() {
		return &profile.IntegrityError{
			Name:     p.Name,
			Stored:   p.ContentHash,
			Computed: util.ContentHash(p.ConfigJSON),
		}
	}
	return nil
}

// wrapErr maps driver errors to the typed kinds callers branch on.
// SQLITE_BUSY past the busy timeout becomes a retryable LockTimeoutError.
func (s *Store) wrapErr(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return &profile.LockTimeoutError{Op: op, Err: err}
	}
	return fmt.Errorf("store %s failed: %w", op, err)
}
