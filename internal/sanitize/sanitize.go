// Package sanitize normalizes user-supplied names into identifiers the
// vector stores accept as collection names (^[a-z0-9_]{1,64}$).
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MaxIdentifierLength is the longest collection name Qdrant and chromem accept.
	MaxIdentifierLength = 64

	// hashSuffixLength covers "_" plus eight hex characters.
	hashSuffixLength = 9

	// DefaultIdentifier is returned when nothing usable survives sanitization.
	DefaultIdentifier = "default"
)

// Identifier lowercases s, replaces every character outside [a-z0-9_] with
// an underscore, collapses underscore runs and trims them from both ends.
// Results longer than MaxIdentifierLength are truncated and given a short
// hash suffix so distinct long names stay distinct.
//
//	"HR Policies 2024" -> "hr_policies_2024"
//	"policybot-docs"   -> "policybot_docs"
//	"" or "!!!"        -> "default"
func Identifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return DefaultIdentifier
	}
	if len(out) > MaxIdentifierLength {
		out = truncateWithHash(out)
	}
	return out
}

// truncateWithHash shortens s to MaxIdentifierLength, keeping a prefix and
// appending the first eight hex digits of its SHA-256.
func truncateWithHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	prefix := strings.TrimRight(s[:MaxIdentifierLength-hashSuffixLength], "_")
	return prefix + "_" + hex.EncodeToString(sum[:])[:8]
}
