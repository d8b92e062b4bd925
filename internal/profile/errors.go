// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Typed error kinds for all profile and settings operations.
//
// Every public operation in the store, config file service and manager
// returns either a success value or exactly one of these kinds, with
// enough context (field, conflicting value, path) to render a one-line
// message. Callers branch with errors.As / errors.Is; none of these are
// retried automatically except LockTimeoutError, which is explicitly
// retryable.

package profile

import (
	"fmt"
	"strings"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports bad input (name, JSON syntax or structure).
// It carries every collected message, not just the first.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError creates a ValidationError from collected messages.
func NewValidationError(messages []string) error {
	return &ValidationError{Messages: messages}
}

// =============================================================================
// NOT FOUND
// =============================================================================

// NotFoundError reports an unknown profile id/name or a missing
// settings/backup file.
type NotFoundError struct {
	Resource string // "profile", "settings file", "backup"
	Ref      string // id, name or path that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

// =============================================================================
// CONFLICT
// =============================================================================

// ConflictError reports a duplicate profile name.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("profile name %q already exists", e.Name)
}

// =============================================================================
// PROTECTED RESOURCE
// =============================================================================

// ProtectedResourceError reports an attempt to delete the active profile.
// Active profiles can never be deleted so there is always a coherent
// "currently applied" configuration once any profile has been activated.
type ProtectedResourceError struct {
	Name string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("cannot delete currently active profile %q", e.Name)
}

// =============================================================================
// IO
// =============================================================================

// IOError reports a filesystem failure during an atomic write or backup.
// Temp files are always cleaned up before this is returned.
type IOError struct {
	Op   string // "write", "backup", "restore", "read"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// =============================================================================
// LOCK TIMEOUT
// =============================================================================

// LockTimeoutError reports persistence contention past the busy timeout.
// Callers may retry the operation.
type LockTimeoutError struct {
	Op  string
	Err error
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("database locked during %s (retryable): %v", e.Op, e.Err)
}

func (e *LockTimeoutError) Unwrap() error {
	return e.Err
}

// =============================================================================
// INTEGRITY
// =============================================================================

// IntegrityError reports a stored hash that does not match the hash
// recomputed from the stored content. This signals corruption and must
// never be silently repaired.
type IntegrityError struct {
	Name     string
	Stored   string
	Computed string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("content hash mismatch for profile %q: stored %s, computed %s",
		e.Name, shortHash(e.Stored), shortHash(e.Computed))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12] + "..."
	}
	return h
}
