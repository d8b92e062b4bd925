// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package configfile manages the live Claude Code settings.json file:
// reads, atomic writes, timestamped backups with retention, restores,
// and content-hash comparison against stored profiles.
//
// Every write goes through a temp-file-and-rename sequence so the
// settings file is never observable in a half-written state. Backups
// are plain copies named settings.json.backup.<YYYYMMDD_HHMMSS> under
// a backups/ directory beside the settings file.
package configfile
