// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ccswitch command line interface.
//
// Every command supports --json for machine-readable output; destructive
// commands prompt for confirmation on a TTY and require --force
// otherwise. Exit codes are mapped from the typed error kinds so scripts
// can branch on the failure category.
package cli
