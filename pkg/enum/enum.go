// Package enum matches free-form status strings against a fixed set of
// canonical values.
package enum

import "strings"

// Canonical returns the allowed value equal to value ignoring case and
// surrounding spaces. Underscores and hyphens match spaces, so "in_progress"
// finds "In Progress".
func Canonical(value string, allowed ...string) (string, bool) {
	key := fold(value)
	if key == "" {
		return "", false
	}
	for _, candidate := range allowed {
		if fold(candidate) == key {
			return candidate, true
		}
	}
	return "", false
}

func fold(value string) string {
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
