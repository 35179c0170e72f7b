package normalize

import "strings"

// Username returns the stored form of a username: surrounding
// whitespace trimmed and lower-cased.
func Username(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
