package utils

import (
	"html"
	"strings"
	"unicode"
)

// SanitizeString removes potentially dangerous characters and escapes HTML
func SanitizeString(input string) string {
	// Trim whitespace
	trimmed := strings.TrimSpace(input)

	// Escape HTML entities
	escaped := html.EscapeString(trimmed)

	return escaped
}

// SanitizeUsername sanitizes a login username before it is forwarded
// upstream or logged.
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)

	var result strings.Builder
	for _, r := range username {
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizePackageName strips anything that cannot appear in a device
// package identifier.
func SanitizePackageName(packageName string) string {
	packageName = strings.TrimSpace(packageName)

	var result strings.Builder
	for _, r := range packageName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
