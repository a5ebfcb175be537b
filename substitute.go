package zplrender

import "strings"

// Substitute - resolves a placeholder token against subs.
// The lookup key is the trimmed token; on a miss the token comes back untouched, untrimmed.
// A nil map is a no-op.
func Substitute(token string, subs map[string]string) string {
	if subs == nil {
		return token
	}
	if v, ok := subs[strings.TrimSpace(token)]; ok {
		return v
	}
	return token
}
