// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// hash.go - Canonical content hashing for configuration JSON.
//
// Profiles and the live settings file are compared by hash, so both sides
// must canonicalize identically: parse, re-serialize with sorted keys and
// no incidental whitespace, then SHA-256. Text that does not parse as
// JSON is hashed as raw bytes instead.

package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash returns the hex SHA-256 of the canonical form of text.
// Key order and formatting differences between semantically equal JSON
// documents do not change the hash.
func ContentHash(text string) string {
	canonical, err := CanonicalJSON(text)
	if err != nil {
		sum := sha256.Sum256([]byte(text))
		return hex.EncodeToString(sum[:])
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON re-serializes text with sorted object keys and no
// extraneous whitespace. Returns an error if text is not valid JSON.
func CanonicalJSON(text string) (string, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", err
	}
	// encoding/json sorts map keys when marshaling, which is exactly the
	// canonical form needed for stable hashing.
	out, err := json.Marshal(parsed)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
