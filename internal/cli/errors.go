// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all ccswitch CLI commands.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the caller decide how to display errors
//   - Map typed error kinds to exit codes so scripts can branch
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/ccswitch/internal/profile"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or validation failure
	ExitUsageError = 2
	// ExitIOError indicates a filesystem failure (write, backup, restore)
	ExitIOError = 3
	// ExitConflictError indicates a duplicate profile name
	ExitConflictError = 4
	// ExitProtectedError indicates an operation on a protected resource
	ExitProtectedError = 5
	// ExitIntegrityError indicates stored content failed its hash check
	ExitIntegrityError = 6
	// ExitNotFoundError indicates a profile, settings file or backup was not found
	ExitNotFoundError = 7
	// ExitLockTimeout indicates database contention; the command may be retried
	ExitLockTimeout = 8
)

// UsageError reports invalid command line usage (unknown command,
// missing argument). Distinct from validation errors, which concern the
// profile content itself.
type UsageError struct {
	Message string
	Usage   string // One-line usage hint (optional)
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nUsage: " + e.Usage
	}
	return e.Message
}

// NewUsageError creates a usage error with an optional usage hint.
func NewUsageError(message, usage string) error {
	return &UsageError{Message: message, Usage: usage}
}

// GetExitCode maps an error to its exit code by error kind.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var validationErr *profile.ValidationError
	if errors.As(err, &usageErr) || errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var ioErr *profile.IOError
	if errors.As(err, &ioErr) {
		return ExitIOError
	}

	var conflictErr *profile.ConflictError
	if errors.As(err, &conflictErr) {
		return ExitConflictError
	}

	var protectedErr *profile.ProtectedResourceError
	if errors.As(err, &protectedErr) {
		return ExitProtectedError
	}

	var integrityErr *profile.IntegrityError
	if errors.As(err, &integrityErr) {
		return ExitIntegrityError
	}

	var notFoundErr *profile.NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}

	var lockErr *profile.LockTimeoutError
	if errors.As(err, &lockErr) {
		return ExitLockTimeout
	}

	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError displays an error in a consistent format: structured JSON
// in JSON mode, a styled one-liner otherwise. A ValidationError prints
// each collected message on its own line.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		displayErrorJSON(err)
		return
	}

	var validationErr *profile.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintf(os.Stderr, "%s validation failed:\n", ErrorStyle.Render("[ERROR]"))
		for _, msg := range validationErr.Messages {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var lockErr *profile.LockTimeoutError
	if errors.As(err, &lockErr) {
		fmt.Fprintln(os.Stderr, DimStyle.Render("Another ccswitch process may be running; try again."))
	}
}

func displayErrorJSON(err error) {
	output := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}

	switch e := errKind(err).(type) {
	case *profile.ValidationError:
		output["error_type"] = "validation_error"
		output["messages"] = e.Messages
	case *profile.NotFoundError:
		output["error_type"] = "not_found_error"
		output["resource"] = e.Resource
		output["ref"] = e.Ref
	case *profile.ConflictError:
		output["error_type"] = "conflict_error"
		output["name"] = e.Name
	case *profile.ProtectedResourceError:
		output["error_type"] = "protected_resource_error"
		output["name"] = e.Name
	case *profile.IOError:
		output["error_type"] = "io_error"
		output["op"] = e.Op
		output["path"] = e.Path
	case *profile.LockTimeoutError:
		output["error_type"] = "lock_timeout_error"
		output["retryable"] = true
	case *profile.IntegrityError:
		output["error_type"] = "integrity_error"
		output["name"] = e.Name
	case *UsageError:
		output["error_type"] = "usage_error"
	default:
		output["error_type"] = "generic_error"
	}
	output["exit_code"] = GetExitCode(err)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// errKind unwraps err to the first typed kind, or returns err itself.
func errKind(err error) error {
	var validationErr *profile.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	var notFoundErr *profile.NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr
	}
	var conflictErr *profile.ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr
	}
	var protectedErr *profile.ProtectedResourceError
	if errors.As(err, &protectedErr) {
		return protectedErr
	}
	var ioErr *profile.IOError
	if errors.As(err, &ioErr) {
		return ioErr
	}
	var lockErr *profile.LockTimeoutError
	if errors.As(err, &lockErr) {
		return lockErr
	}
	var integrityErr *profile.IntegrityError
	if errors.As(err, &integrityErr) {
		return integrityErr
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return usageErr
	}
	return err
}
