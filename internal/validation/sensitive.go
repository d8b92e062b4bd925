// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sensitive.go - Sensitive-data detection and masking for profile JSON.
//
// Detection runs an ordered pattern set over the raw text. Classification
// of each match works on a normalized form (NFKC, lowercased) so that
// unicode lookalikes cannot dodge the substring checks.

package validation

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/ccswitch/internal/util"
)

// =============================================================================
// SENSITIVE DATA TYPES
// =============================================================================

// Sensitive data classifications, in fixed priority order.
const (
	SensitiveAnthropicToken = "anthropic_api_token"
	SensitiveAPIKey         = "api_key"
	SensitivePassword       = "password"
	SensitiveSecret         = "secret"
	SensitiveToken          = "token"
	SensitiveKey            = "key"
	SensitiveUnknown        = "unknown"
)

// SensitiveItem describes a single sensitive-data finding.
type SensitiveItem struct {
	Pattern string `json:"pattern"` // Source pattern that matched
	Match   string `json:"match"`   // Matched substring
	Start   int    `json:"start"`   // Byte offset of the match start
	End     int    `json:"end"`     // Byte offset one past the match end
	Context string `json:"context"` // Up to 50 bytes either side of the match
	Type    string `json:"type"`    // Classification, see constants above
}

// sensitivePattern couples a compiled regexp with its serializable form.
type sensitivePattern struct {
	expr    string
	pattern *regexp.Regexp
}

// sensitivePatterns is the ordered pattern set. Order matters: findings
// are reported per pattern in this sequence, most specific first.
var sensitivePatterns = []sensitivePattern{
	{expr: `(?i)sk-ant-api03-[a-zA-Z0-9_-]+`},           // Anthropic API tokens
	{expr: `(?i)sk-[a-zA-Z0-9_-]+`},                     // Generic API keys
	{expr: `[a-zA-Z0-9_-]{20,}`},                        // Long alphanumeric runs (likely keys)
	{expr: `(?i)password\s*[:=]\s*[^\s,}]+`},            // Password assignments
	{expr: `(?i)secret\s*[:=]\s*[^\s,}]+`},              // Secret assignments
	{expr: `(?i)token\s*[:=]\s*[^\s,}]+`},               // Token assignments
	{expr: `(?i)key\s*[:=]\s*[^\s,}]+`},                 // Key assignments
}

func init() {
	for i := range sensitivePatterns {
		sensitivePatterns[i].pattern = regexp.MustCompile(sensitivePatterns[i].expr)
	}
}

// contextRadius is how many bytes of surrounding text each finding carries.
const contextRadius = 50

// maskVisibleChars is how many characters remain visible at each end of a
// masked match.
const maskVisibleChars = 8

// =============================================================================
// DETECTION
// =============================================================================

// DetectSensitiveData scans raw text for values that look like
// credentials. Every pattern match is reported with its offsets,
// surrounding context and a best-effort classification.
func DetectSensitiveData(text string) []SensitiveItem {
	var items []SensitiveItem

	for _, p := range sensitivePatterns {
		for _, loc := range p.pattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]

			ctxStart := start - contextRadius
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + contextRadius
			if ctxEnd > len(text) {
				ctxEnd = len(text)
			}

			match := text[start:end]
			items = append(items, SensitiveItem{
				Pattern: p.expr,
				Match:   match,
				Start:   start,
				End:     end,
				Context: text[ctxStart:ctxEnd],
				Type:    classifySensitiveData(match),
			})
		}
	}

	return items
}

// classifySensitiveData assigns a classification by substring tests on
// the normalized match, in fixed priority order.
func classifySensitiveData(match string) string {
	scanForm := strings.ToLower(norm.NFKC.String(match))

	switch {
	case strings.HasPrefix(scanForm, "sk-ant-api03"):
		return SensitiveAnthropicToken
	case strings.HasPrefix(scanForm, "sk-"):
		return SensitiveAPIKey
	case strings.Contains(scanForm, "password"):
		return SensitivePassword
	case strings.Contains(scanForm, "secret"):
		return SensitiveSecret
	case strings.Contains(scanForm, "token"):
		return SensitiveToken
	case strings.Contains(scanForm, "key"):
		return SensitiveKey
	default:
		return SensitiveUnknown
	}
}

// =============================================================================
// MASKING
// =============================================================================

// MaskSensitiveData replaces every detected match with a redacted form:
// the first and last maskVisibleChars characters joined by "...", or just
// the leading characters when the match is too short to keep both ends.
// Replacements are applied from the highest byte offset to the lowest so
// earlier offsets stay valid as the string shrinks.
func MaskSensitiveData(text string) string {
	items := DetectSensitiveData(text)
	if len(items) == 0 {
		return text
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Start != items[j].Start {
			return items[i].Start > items[j].Start
		}
		return items[i].End > items[j].End
	})

	masked := text
	// Overlapping findings (an Anthropic token also matches the generic
	// key patterns) are replaced once; lastStart tracks the left edge of
	// the previous replacement.
	lastStart := len(text) + 1

	for _, item := range items {
		if item.End > lastStart {
			continue
		}
		masked = masked[:item.Start] + maskValue(item.Match) + masked[item.End:]
		lastStart = item.Start
	}

	return masked
}

// maskValue redacts a single matched value.
func maskValue(match string) string {
	runes := []rune(match)
	if len(runes) > maskVisibleChars*2 {
		return string(runes[:maskVisibleChars]) + "..." + string(runes[len(runes)-maskVisibleChars:])
	}
	return util.TruncateRunesNoEllipsis(match, maskVisibleChars) + "..."
}
