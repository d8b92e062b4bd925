// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// schema.go - Fixed table layout for the profile database.
//
// The schema is created once and never migrated; see the package doc.

package store

// Schema creates the profile tables and indexes. All statements are
// idempotent so reopening an existing database is a no-op.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	config_json TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS backup_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	op_id TEXT NOT NULL,
	profile_id INTEGER,
	backup_path TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (profile_id) REFERENCES profiles (id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(is_active);
CREATE INDEX IF NOT EXISTS idx_backup_log_profile ON backup_log(profile_id);
`
