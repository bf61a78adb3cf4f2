package identity

import "strings"

// MaxUsernameLen bounds usernames in runes.
const MaxUsernameLen = 64

// NormalizeUsername trims surrounding whitespace. Matching stays exact and
// case-sensitive so stored usernames keep working unchanged.
func NormalizeUsername(s string) string {
	return strings.TrimSpace(s)
}
