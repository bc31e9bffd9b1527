package util

import "strings"

// ContainsAnyFold reports whether s contains any of the needles, ignoring case
func ContainsAnyFold(s string, needles []string) bool {
	lowered := strings.ToLower(s)

	for _, needle := range needles {
		if strings.Contains(lowered, strings.ToLower(needle)) {
			return true
		}
	}

	return false
}

func TrimString(s string, length int) string {
	if len(s) <= length {
		return s
	}

	return s[:length]
}
