// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// validation.go - JSON syntax, profile name and configuration structure checks.
//
// Error messages are returned as plain strings so callers can join or
// render them however the front end requires. A nil/empty slice means the
// input passed.

package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jeranaias/ccswitch/internal/util"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	// MaxNameLength is the maximum allowed profile name length in characters.
	MaxNameLength = 100

	// MaxTokensLimit is the upper bound accepted for the max_tokens field.
	MaxTokensLimit = 200000
)

// urlPattern validates the host portion of a base URL: a dotted domain,
// localhost, or a dotted-quad IP, with optional port and path.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// =============================================================================
// JSON SYNTAX
// =============================================================================

// ValidateJSONSyntax checks that text parses as JSON.
// Empty or whitespace-only text is an error. Parse failures report the
// line and column of the offending byte.
func ValidateJSONSyntax(text string) []string {
	var errs []string

	if strings.TrimSpace(text) == "" {
		errs = append(errs, "JSON content is empty")
		return errs
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			line, col := offsetToLineCol(text, syntaxErr.Offset)
			errs = append(errs, fmt.Sprintf("JSON syntax error: %s at line %d, column %d", syntaxErr.Error(), line, col))
		} else {
			errs = append(errs, fmt.Sprintf("JSON syntax error: %s", err.Error()))
		}
	}

	return errs
}

// offsetToLineCol converts a byte offset into 1-based line and column.
func offsetToLineCol(text string, offset int64) (int, int) {
	if offset < 0 {
		return 1, 1
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	line, col := 1, 1
	for _, b := range []byte(text[:offset]) {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// =============================================================================
// PROFILE NAME
// =============================================================================

// ValidateProfileName checks a profile name against the naming rules:
// non-empty, at most MaxNameLength characters, no path separators, no
// ".." sequence, no NUL and no ASCII control characters.
// Every violated rule yields its own error; checks do not short-circuit
// past the empty-name case.
func ValidateProfileName(name string) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		errs = append(errs, "Profile name is required")
		return errs
	}

	if util.RuneLen(name) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("Profile name must be %d characters or less", MaxNameLength))
	}

	if strings.Contains(name, "/") {
		errs = append(errs, "Profile name contains invalid character: '/'")
	}
	if strings.Contains(name, `\`) {
		errs = append(errs, `Profile name contains invalid character: '\'`)
	}
	if strings.Contains(name, "..") {
		errs = append(errs, "Profile name contains invalid sequence: '..'")
	}
	if strings.ContainsRune(name, 0) {
		errs = append(errs, "Profile name contains NUL character")
	}

	for _, r := range name {
		if r < 32 {
			errs = append(errs, "Profile name contains control characters")
			break
		}
	}

	return errs
}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// ValidateConfigStructure checks a parsed configuration value against the
// recognized Claude Code settings shape. The schema is open: only fields
// that are present are checked.
func ValidateConfigStructure(parsed interface{}) []string {
	var errs []string

	config, ok := parsed.(map[string]interface{})
	if !ok {
		errs = append(errs, "Configuration must be a JSON object")
		return errs
	}

	if envRaw, present := config["env"]; present {
		env, ok := envRaw.(map[string]interface{})
		if !ok {
			errs = append(errs, "'env' section must be a JSON object")
		} else {
			if baseURLRaw, present := env["ANTHROPIC_BASE_URL"]; present {
				baseURL, ok := baseURLRaw.(string)
				switch {
				case !ok:
					errs = append(errs, "ANTHROPIC_BASE_URL must be a string")
				case strings.TrimSpace(baseURL) == "":
					errs = append(errs, "ANTHROPIC_BASE_URL cannot be empty")
				default:
					for _, urlErr := range ValidateURL(baseURL) {
						errs = append(errs, "ANTHROPIC_BASE_URL: "+urlErr)
					}
				}
			}

			if tokenRaw, present := env["ANTHROPIC_AUTH_TOKEN"]; present {
				token, ok := tokenRaw.(string)
				if !ok {
					errs = append(errs, "ANTHROPIC_AUTH_TOKEN must be a string")
				} else if strings.TrimSpace(token) == "" {
					errs = append(errs, "ANTHROPIC_AUTH_TOKEN cannot be empty")
				}
			}
		}
	}

	if modelRaw, present := config["model"]; present {
		model, ok := modelRaw.(string)
		if !ok {
			errs = append(errs, "Model must be a string")
		} else if strings.TrimSpace(model) == "" {
			errs = append(errs, "Model cannot be empty")
		}
	}

	if maxTokensRaw, present := config["max_tokens"]; present {
		maxTokens, ok := maxTokensRaw.(float64)
		switch {
		case !ok || maxTokens != math.Trunc(maxTokens):
			errs = append(errs, "max_tokens must be an integer")
		case maxTokens <= 0:
			errs = append(errs, "max_tokens must be greater than 0")
		case maxTokens > MaxTokensLimit:
			errs = append(errs, fmt.Sprintf("max_tokens is unusually large (maximum %d)", MaxTokensLimit))
		}
	}

	if tempRaw, present := config["temperature"]; present {
		temp, ok := tempRaw.(float64)
		if !ok {
			errs = append(errs, "temperature must be a number")
		} else if temp < 0.0 || temp > 2.0 {
			errs = append(errs, "temperature must be between 0.0 and 2.0")
		}
	}

	return errs
}

// ValidateURL checks a base URL: http/https scheme plus a well-formed
// host (domain, localhost or IP), optional port and path.
func ValidateURL(url string) []string {
	var errs []string

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		errs = append(errs, "URL must start with http:// or https://")
		return errs
	}

	if !urlPattern.MatchString(url) {
		errs = append(errs, "URL format is invalid")
	}

	return errs
}

// =============================================================================
// COMPLETENESS AND SUGGESTIONS
// =============================================================================

// ValidateCompleteness returns warnings (never errors) for configurations
// that parse and validate but are likely missing something the user wants.
func ValidateCompleteness(parsed interface{}) []string {
	var warnings []string

	config, ok := parsed.(map[string]interface{})
	if !ok {
		return warnings
	}

	envRaw, hasEnv := config["env"]
	if !hasEnv {
		warnings = append(warnings, "No 'env' section found - environment variables may not be set")
	} else if env, ok := envRaw.(map[string]interface{}); ok {
		if _, present := env["ANTHROPIC_BASE_URL"]; !present {
			warnings = append(warnings, "ANTHROPIC_BASE_URL not set in environment variables")
		}
		if _, present := env["ANTHROPIC_AUTH_TOKEN"]; !present {
			warnings = append(warnings, "ANTHROPIC_AUTH_TOKEN not set in environment variables")
		}
	}

	if _, present := config["model"]; !present {
		warnings = append(warnings, "No model specified - will use default model")
	}

	if temp, ok := config["temperature"].(float64); ok && temp > 1.5 {
		warnings = append(warnings, "High temperature setting may produce unpredictable results")
	}

	if maxTokens, ok := config["max_tokens"].(float64); ok && maxTokens < 100 {
		warnings = append(warnings, "Very low max_tokens setting may truncate responses")
	}

	return warnings
}

// Suggestions returns non-binding configuration improvement hints.
func Suggestions(parsed interface{}) []string {
	var suggestions []string

	config, ok := parsed.(map[string]interface{})
	if !ok {
		return suggestions
	}

	if _, present := config["model"]; !present {
		suggestions = append(suggestions, "Consider specifying a model for consistent behavior")
	}

	if maxTokensRaw, present := config["max_tokens"]; !present {
		suggestions = append(suggestions, "Consider setting max_tokens to control response length")
	} else if maxTokens, ok := maxTokensRaw.(float64); ok && maxTokens > 100000 {
		suggestions = append(suggestions, "Very high max_tokens value - consider reducing for cost control")
	}

	if _, present := config["temperature"]; !present {
		suggestions = append(suggestions, "Consider setting temperature for response consistency")
	}

	return suggestions
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the aggregate validation report for a profile.
// Valid is true iff Errors is empty; warnings, sensitive findings and
// suggestions never affect validity.
type Summary struct {
	Valid       bool            `json:"valid"`
	Errors      []string        `json:"errors"`
	Warnings    []string        `json:"warnings"`
	Sensitive   []SensitiveItem `json:"sensitive_data"`
	Suggestions []string        `json:"suggestions"`
}

// Summarize runs every check against a profile name and configuration.
// Structure, completeness, sensitive-data and suggestion passes only run
// when the JSON syntax is clean.
func Summarize(name, configJSON string) Summary {
	summary := Summary{
		Errors:      []string{},
		Warnings:    []string{},
		Sensitive:   []SensitiveItem{},
		Suggestions: []string{},
	}

	summary.Errors = append(summary.Errors, ValidateProfileName(name)...)

	syntaxErrs := ValidateJSONSyntax(configJSON)
	summary.Errors = append(summary.Errors, syntaxErrs...)

	if len(syntaxErrs) == 0 {
		var parsed interface{}
		if err := json.Unmarshal([]byte(configJSON), &parsed); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Error analyzing configuration: %s", err.Error()))
		} else {
			summary.Errors = append(summary.Errors, ValidateConfigStructure(parsed)...)
			summary.Warnings = append(summary.Warnings, ValidateCompleteness(parsed)...)
			summary.Sensitive = DetectSensitiveData(configJSON)
			summary.Suggestions = Suggestions(parsed)
		}
	}

	summary.Valid = len(summary.Errors) == 0
	return summary
}
