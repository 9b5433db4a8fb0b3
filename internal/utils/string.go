package utils

import "strings"

func TruncateString(str string, borderSizeToKeep int) string {
	if len(str) <= 2*borderSizeToKeep {
		return str
	}
	return str[:borderSizeToKeep] + "..." + str[len(str)-borderSizeToKeep:]
}

// TrimAndLower trims and lowercases a string.
func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsBlank reports whether the string is empty after trimming spaces.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
