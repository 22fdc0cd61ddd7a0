package stamp

import "strings"

// invalidKeyRunes are rejected by at least one supported filesystem.
const invalidKeyRunes = "\"<>|:*?\\/"

// SanitizeKey drops every rune that is not allowed in a path component and
// keeps the rest in order. Distinct course names may map to the same key.
func SanitizeKey(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(invalidKeyRunes, r) {
			return -1
		}
		return r
	}, name)
}

// validKey reports whether a sanitized key can name a directory of its own.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".."
}
