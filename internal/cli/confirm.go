// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Unified confirmation handling for destructive commands.
//
// USABILITY: TTY detection for proper terminal handling
//
// One pattern everywhere:
//  1. If --force is present, proceed without prompting
//  2. If --json mode, require --force (no interactive prompts in JSON mode)
//  3. If stdin is not a TTY, require --force (can't prompt)
//  4. Otherwise, show interactive prompt for confirmation

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RequireConfirmation checks if the user has confirmed a destructive
// action. Returns (false, nil) when the user declined at the prompt, and
// a non-nil error when confirmation is required but cannot be obtained.
func RequireConfirmation(forceFlag bool, action string, jsonMode bool) (bool, error) {
	if forceFlag {
		return true, nil
	}

	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --force for destructive actions in JSON mode")
	}

	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --force")
	}

	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}

// ShowCancellationMessage displays a standard cancellation message.
func ShowCancellationMessage() {
	fmt.Println(DimStyle.Render("Cancelled."))
}
