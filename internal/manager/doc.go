// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package manager orchestrates profiles across validation, storage, and
// the live settings file. It owns the business rules: content is
// validated before uniqueness is checked, the active profile cannot be
// deleted, and activation only records a new active profile after the
// settings file write succeeds.
package manager
