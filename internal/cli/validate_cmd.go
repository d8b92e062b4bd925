// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// validate_cmd.go - Validation CLI command for ccswitch.
//
// Command: validate
//
// Validates either a stored profile or JSON supplied via --file / stdin.
// Reports errors, warnings, detected credentials (masked) and suggestions.
//
// Examples:
//   ccswitch validate work
//   ccswitch validate --file candidate.json
//   cat candidate.json | ccswitch validate

package cli

import (
	"fmt"

	"github.com/jeranaias/ccswitch/internal/profile"
	"github.com/jeranaias/ccswitch/internal/validation"
)

// HandleValidate handles the "validate" command.
func (a *App) HandleValidate(parser *ArgParser) error {
	name, configJSON, err := a.validateInput(parser)
	if err != nil {
		return err
	}

	summary := validation.Summarize(name, configJSON)

	if parser.BoolFlag("json") {
		data := ValidateData{
			Valid:       summary.Valid,
			Errors:      summary.Errors,
			Warnings:    summary.Warnings,
			Sensitive:   make([]string, 0, len(summary.Sensitive)),
			Suggestions: summary.Suggestions,
		}
		for _, item := range summary.Sensitive {
			data.Sensitive = append(data.Sensitive,
				fmt.Sprintf("%s: %s", item.Type, validation.MaskSensitiveData(item.Match)))
		}
		return NewJSONResponse("validate", data).Print()
	}

	printSummary(name, summary)
	if !summary.Valid {
		// One-line error so the exit code reflects the failure without
		// repeating the messages already printed above.
		return profile.NewValidationError([]string{"configuration failed validation"})
	}
	return nil
}

// validateInput resolves what to validate. A positional argument names a
// stored profile; otherwise content comes from --file or piped stdin.
func (a *App) validateInput(parser *ArgParser) (string, string, error) {
	if ref := parser.Positional(0); ref != "" {
		p, err := a.Manager.GetByNameOrID(ref)
		if err != nil {
			return "", "", err
		}
		return p.Name, p.ConfigJSON, nil
	}

	content, err := readConfigInput(parser)
	if err != nil {
		if !parser.HasFlag("file") {
			return "", "", NewUsageError("profile name, --file, or piped input required",
				"ccswitch validate [<name|id>] [--file <path>]")
		}
		return "", "", err
	}
	return "candidate", content, nil
}

func printSummary(name string, summary validation.Summary) {
	fmt.Println(TitleStyle.Render("Validation: " + name))

	if summary.Valid {
		fmt.Printf("%s Configuration is valid\n", SuccessStyle.Render("[OK]"))
	} else {
		fmt.Printf("%s Configuration has problems\n", ErrorStyle.Render("[FAIL]"))
	}

	for _, msg := range summary.Errors {
		fmt.Printf("  %s %s\n", ErrorStyle.Render("error:"), msg)
	}
	for _, msg := range summary.Warnings {
		fmt.Printf("  %s %s\n", WarningStyle.Render("warning:"), msg)
	}
	for _, item := range summary.Sensitive {
		fmt.Printf("  %s %s (%s)\n", WarningStyle.Render("credential:"),
			validation.MaskSensitiveData(item.Match), item.Type)
	}
	for _, msg := range summary.Suggestions {
		fmt.Printf("  %s %s\n", DimStyle.Render("hint:"), msg)
	}
}
