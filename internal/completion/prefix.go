package completion

import (
	"strings"
	"unicode"
)

// CommonPrefixLen returns the length in characters of the longest prefix
// shared by all names, compared case-insensitively. It never extends past a
// position where some name stops matching.
func CommonPrefixLen(names []string) int {
	if len(names) == 0 {
		return 0
	}
	first := []rune(names[0])
	n := len(first)
	for _, name := range names[1:] {
		rs := []rune(name)
		if len(rs) < n {
			n = len(rs)
		}
		for i := 0; i < n; i++ {
			if !equalFold(first[i], rs[i]) {
				n = i
				break
			}
		}
	}
	return n
}

// HasPrefixFold reports whether s begins with prefix, ignoring case.
func HasPrefixFold(s, prefix string) bool {
	sr, pr := []rune(s), []rune(prefix)
	if len(pr) > len(sr) {
		return false
	}
	for i := range pr {
		if !equalFold(sr[i], pr[i]) {
			return false
		}
	}
	return true
}

// CompareFold orders strings case-insensitively, breaking ties bytewise so
// the order is total.
func CompareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func equalFold(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}
