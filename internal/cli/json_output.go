// json_output.go - JSON output support for scripting and automation.
//
// Provides a standardized JSON envelope for all CLI commands so output
// can be piped into jq, CI checks or shell scripts.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/ccswitch/internal/configfile"
	"github.com/jeranaias/ccswitch/internal/profile"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// StderrPrintln prints a line to stderr (for human-readable output in
// JSON mode).
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// ProfileData is the JSON shape of a profile in command output. The
// configuration is masked unless --show-secrets is given.
type ProfileData struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	Model       string `json:"model,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	AuthToken   string `json:"auth_token,omitempty"` // Masked
	ContentHash string `json:"content_hash"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	ConfigJSON  string `json:"config_json,omitempty"`
}

// NewProfileData converts a profile for output. When includeConfig is
// true the configuration text is attached, masked unless showSecrets.
func NewProfileData(p *profile.Profile, includeConfig, showSecrets bool, mask func(string) string) ProfileData {
	data := ProfileData{
		ID:          p.ID,
		Name:        p.Name,
		IsActive:    p.IsActive,
		Model:       p.Model(),
		BaseURL:     p.BaseURL(),
		AuthToken:   p.MaskedAuthToken(),
		ContentHash: p.ContentHash,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if includeConfig {
		if showSecrets {
			data.ConfigJSON = p.ConfigJSON
		} else {
			data.ConfigJSON = mask(p.ConfigJSON)
		}
	}
	return data
}

// StatusData is the JSON shape of the status command output.
type StatusData struct {
	ActiveProfile *ProfileData    `json:"active_profile"`
	SettingsFile  configfile.Info `json:"settings_file"`
	Drifted       bool            `json:"drifted"`
	ProfileCount  int             `json:"profile_count"`
	DatabasePath  string          `json:"database_path"`
}

// BackupData is the JSON shape of one backup in listings.
type BackupData struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// ValidateData is the JSON shape of the validate command output.
type ValidateData struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Sensitive   []string `json:"sensitive_data"` // classification: masked match
	Suggestions []string `json:"suggestions"`
}
