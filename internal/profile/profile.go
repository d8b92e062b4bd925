// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// profile.go - Profile model: a named, hashed JSON configuration snapshot.

package profile

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/ccswitch/internal/util"
)

// =============================================================================
// PROFILE MODEL
// =============================================================================

// Profile is a named, versioned configuration snapshot.
//
// ContentHash is the SHA-256 of the canonicalized ConfigJSON (raw bytes
// when the content is not valid JSON) and must always equal the hash
// recomputed from ConfigJSON; a mismatch is a data-corruption condition.
type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ConfigJSON  string    `json:"config_json"`
	ContentHash string    `json:"content_hash"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New creates an unsaved profile with a computed hash and fresh
// timestamps. The store assigns the ID on creation.
func New(name, configJSON string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		Name:        name,
		ConfigJSON:  configJSON,
		ContentHash: util.ContentHash(configJSON),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ConfigMap parses ConfigJSON into a map. Returns an empty map when the
// content is not a JSON object.
func (p *Profile) ConfigMap() map[string]interface{} {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(p.ConfigJSON), &parsed); err != nil {
		return map[string]interface{}{}
	}
	return parsed
}

// BaseURL extracts env.ANTHROPIC_BASE_URL, or "" when absent.
func (p *Profile) BaseURL() string {
	env, ok := p.ConfigMap()["env"].(map[string]interface{})
	if !ok {
		return ""
	}
	url, _ := env["ANTHROPIC_BASE_URL"].(string)
	return url
}

// Model extracts the model field, or "" when absent.
func (p *Profile) Model() string {
	model, _ := p.ConfigMap()["model"].(string)
	return model
}

// MaskedAuthToken returns env.ANTHROPIC_AUTH_TOKEN with only the first 8
// and last 4 characters visible (e.g. "sk-ant-a...9029"). Tokens too
// short to mask meaningfully are returned as-is.
func (p *Profile) MaskedAuthToken() string {
	env, ok := p.ConfigMap()["env"].(map[string]interface{})
	if !ok {
		return ""
	}
	token, _ := env["ANTHROPIC_AUTH_TOKEN"].(string)
	runes := []rune(token)
	if len(runes) > 10 {
		return string(runes[:8]) + "..." + string(runes[len(runes)-4:])
	}
	return token
}

// VerifyIntegrity recomputes the content hash and reports whether it
// matches the stored one.
func (p *Profile) VerifyIntegrity() bool {
	return p.ContentHash == util.ContentHash(p.ConfigJSON)
}

// Clone returns an independent copy.
func (p *Profile) Clone() *Profile {
	clone := *p
	return &clone
}
