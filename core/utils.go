package core

import "strings"

// CleanString trims leading and trailing whitespace from s.
func CleanString(s string) string {
	return strings.TrimSpace(s)
}
