package utils

import "strings"

// NormalizePlate canonicalizes a license plate for lookup and comparison:
// whitespace and hyphens removed, uppercased. Idempotent.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.Join(strings.Fields(normalized), "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
