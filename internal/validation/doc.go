// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validation implements the validation engine for ccswitch.
//
// All functions here are pure: they read input strings and return slices
// of human-readable findings, never touching the filesystem or database.
// Three layers are provided:
//
//   - syntax and structure checks for profile configuration JSON
//     (ValidateJSONSyntax, ValidateConfigStructure)
//   - profile name rules (ValidateProfileName)
//   - sensitive-data detection and masking (DetectSensitiveData,
//     MaskSensitiveData)
//
// Summary aggregates all of the above into a single report with hard
// errors, non-binding warnings and suggestions.
package validation
