// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile defines the Profile model and the typed error kinds
// shared by the store, the config file service and the manager.
//
// Profile values handed to callers are independent snapshots: mutating
// one has no effect on persisted state until it is passed back through a
// manager update operation.
package profile
