// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"strings"
	"testing"
)

func TestNewComputesHash(t *testing.T) {
	p := New("dev", `{"model": "claude-sonnet-4"}`)
	if p.ContentHash == "" {
		t.Error("hash should be computed")
	}
	if !p.VerifyIntegrity() {
		t.Error("fresh profile should verify")
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Error("timestamps should be set and equal on creation")
	}
}

func TestVerifyIntegrityDetectsTamper(t *testing.T) {
	p := New("dev", `{"a": 1}`)
	p.ConfigJSON = `{"a": 2}`
	if p.VerifyIntegrity() {
		t.Error("modified content should fail verification")
	}
}

func TestConfigAccessors(t *testing.T) {
	p := New("dev", `{
		"env": {"ANTHROPIC_BASE_URL": "https://api.anthropic.com"},
		"model": "claude-opus-4"
	}`)
	if p.BaseURL() != "https://api.anthropic.com" {
		t.Errorf("BaseURL = %q", p.BaseURL())
	}
	if p.Model() != "claude-opus-4" {
		t.Errorf("Model = %q", p.Model())
	}

	empty := New("x", `not json`)
	if empty.BaseURL() != "" || empty.Model() != "" {
		t.Error("accessors should be empty for unparseable content")
	}
}

func TestMaskedAuthToken(t *testing.T) {
	p := New("dev", `{"env": {"ANTHROPIC_AUTH_TOKEN": "sk-ant-api03-abcdef9029"}}`)
	masked := p.MaskedAuthToken()
	if masked != "sk-ant-a...9029" {
		t.Errorf("masked = %q", masked)
	}

	short := New("dev", `{"env": {"ANTHROPIC_AUTH_TOKEN": "tiny"}}`)
	if short.MaskedAuthToken() != "tiny" {
		t.Errorf("short tokens are returned as-is, got %q", short.MaskedAuthToken())
	}

	none := New("dev", `{}`)
	if none.MaskedAuthToken() != "" {
		t.Error("no env section should yield an empty token")
	}
}

func TestClone(t *testing.T) {
	p := New("dev", `{}`)
	c := p.Clone()
	c.Name = "copy"
	if p.Name != "dev" {
		t.Error("clone should not alias the original")
	}
}

func TestErrorMessages(t *testing.T) {
	verr := NewValidationError([]string{"first", "second"})
	if !strings.Contains(verr.Error(), "first; second") {
		t.Errorf("validation error should join messages: %q", verr.Error())
	}

	nf := &NotFoundError{Resource: "profile", Ref: "dev"}
	if nf.Error() != "profile not found: dev" {
		t.Errorf("not found message = %q", nf.Error())
	}

	conflict := &ConflictError{Name: "dev"}
	if !strings.Contains(conflict.Error(), `"dev" already exists`) {
		t.Errorf("conflict message = %q", conflict.Error())
	}

	integ := &IntegrityError{Name: "dev", Stored: strings.Repeat("a", 64), Computed: strings.Repeat("b", 64)}
	if strings.Contains(integ.Error(), strings.Repeat("a", 64)) {
		t.Error("integrity message should truncate hashes")
	}
}
