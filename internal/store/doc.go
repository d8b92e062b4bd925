// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable SQLite persistence for profiles.
//
// The store owns the persisted records and enforces two invariants at
// this layer: profile names are unique, and at most one profile is
// active at any observable instant. Both are enforced inside single
// transactions so no reader ever sees an intermediate state.
package store
