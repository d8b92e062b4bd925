// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

import (
	"strings"
	"testing"
)

const anthropicToken = "sk-ant-REDACTED"

func findingsOfType(items []SensitiveItem, typ string) []SensitiveItem {
	var out []SensitiveItem
	for _, it := range items {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}

func TestDetectAnthropicToken(t *testing.T) {
	text := `{"env": {"ANTHROPIC_AUTH_TOKEN": "` + anthropicToken + `"}}`
	items := DetectSensitiveData(text)
	if len(items) == 0 {
		t.Fatal("expected findings")
	}

	tokens := findingsOfType(items, SensitiveAnthropicToken)
	if len(tokens) == 0 {
		t.Fatal("expected an anthropic_api_token finding")
	}
	it := tokens[0]
	if it.Match != anthropicToken {
		t.Errorf("match = %q", it.Match)
	}
	if text[it.Start:it.End] != it.Match {
		t.Error("offsets do not frame the match")
	}
	if !strings.Contains(it.Context, "ANTHROPIC_AUTH_TOKEN") {
		t.Errorf("context should include surrounding text: %q", it.Context)
	}
}

func TestDetectClassifications(t *testing.T) {
	tests := []struct {
		name string
		text string
		typ  string
	}{
		{"anthropic token", anthropicToken, SensitiveAnthropicToken},
		{"generic sk key", "sk-proj1234abcd", SensitiveAPIKey},
		{"password assignment", `password = hunter2secret`, SensitivePassword},
		{"secret assignment", `secret: veryhidden`, SensitiveSecret},
		{"token assignment", `token=abc123def`, SensitiveToken},
		{"key assignment", `key: openme99`, SensitiveKey},
		{"long random string", "Zx9Qw8Er7Ty6Ui5Op4As3Df", SensitiveUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := DetectSensitiveData(tt.text)
			if len(findingsOfType(items, tt.typ)) == 0 {
				t.Errorf("no %s finding in %v", tt.typ, items)
			}
		})
	}
}

func TestDetectCaseInsensitiveAssignments(t *testing.T) {
	items := DetectSensitiveData(`PASSWORD: SuperSecretValue1`)
	if len(findingsOfType(items, SensitivePassword)) == 0 {
		t.Errorf("uppercase assignment not detected: %v", items)
	}
}

func TestDetectUppercaseKeyPrefixes(t *testing.T) {
	// Short uppercase keys would slip past the 20-char generic run
	// pattern entirely, so the prefix patterns must match any case.
	items := DetectSensitiveData(`{"spare": "SK-AbC123"}`)
	keys := findingsOfType(items, SensitiveAPIKey)
	if len(keys) == 0 {
		t.Fatal("expected an api_key finding for an uppercase SK- prefix")
	}
	if keys[0].Match != "SK-AbC123" {
		t.Errorf("match = %q, want SK-AbC123", keys[0].Match)
	}

	items = DetectSensitiveData(`{"t": "SK-ANT-API03-AbCd1234"}`)
	if len(findingsOfType(items, SensitiveAnthropicToken)) == 0 {
		t.Error("expected an anthropic_api_token finding for an uppercase prefix")
	}
}

func TestDetectNothingInCleanConfig(t *testing.T) {
	items := DetectSensitiveData(`{"model": "short", "temperature": 0.7}`)
	if len(items) != 0 {
		t.Errorf("unexpected findings: %v", items)
	}
}

func TestMaskLongValue(t *testing.T) {
	text := `{"auth": "` + anthropicToken + `"}`
	masked := MaskSensitiveData(text)

	if strings.Contains(masked, anthropicToken) {
		t.Error("full token survived masking")
	}
	if !strings.Contains(masked, "sk-ant-a") {
		t.Errorf("masked value should keep the first characters: %q", masked)
	}
	if !strings.Contains(masked, "...") {
		t.Errorf("masked value should contain an ellipsis: %q", masked)
	}
	// The non-sensitive structure survives.
	if !strings.HasPrefix(masked, `{"auth": "`) || !strings.HasSuffix(masked, `"}`) {
		t.Errorf("surrounding text damaged: %q", masked)
	}
}

func TestMaskShortValueKeepsPrefixOnly(t *testing.T) {
	// 15 characters: too short to show both ends.
	masked := MaskSensitiveData("sk-abcdefghij12")
	if masked != "sk-abcde..." {
		t.Errorf("masked = %q, want sk-abcde...", masked)
	}
}

func TestMaskOverlappingFindingsOnce(t *testing.T) {
	// The token matches the Anthropic pattern, the generic sk- pattern
	// and the long-run pattern; it must be replaced exactly once.
	masked := MaskSensitiveData(anthropicToken)
	if got := strings.Count(masked, "..."); got != 1 {
		t.Errorf("ellipsis count = %d in %q, want 1", got, masked)
	}
	if len(masked) >= len(anthropicToken) {
		t.Errorf("masking should shrink the value: %q", masked)
	}
}

func TestMaskMultipleValues(t *testing.T) {
	text := `token=firstsecretvalue1 and password: anotherhiddenone2`
	masked := MaskSensitiveData(text)
	if strings.Contains(masked, "firstsecretvalue1") || strings.Contains(masked, "anotherhiddenone2") {
		t.Errorf("a value survived masking: %q", masked)
	}
	if !strings.Contains(masked, " and ") {
		t.Errorf("text between values damaged: %q", masked)
	}
}

func TestMaskNoFindingsReturnsInput(t *testing.T) {
	text := `{"model": "short"}`
	if masked := MaskSensitiveData(text); masked != text {
		t.Errorf("clean text modified: %q", masked)
	}
}

func TestClassifyNormalizesLookalikes(t *testing.T) {
	// Fullwidth "ｐａｓｓｗｏｒｄ" NFKC-normalizes to "password".
	it := classifySensitiveData("ｐａｓｓｗｏｒｄ＝aaaaaaaaaaaaaaaaaaaa")
	if it != SensitivePassword {
		t.Errorf("classification = %q, want password", it)
	}
}
