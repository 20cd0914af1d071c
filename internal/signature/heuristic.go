package signature

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tailWindow is how many trailing characters are searched for the mark.
const tailWindow = 200

// HasEndSignature reports whether body already ends in a signature block:
// the trimmed body ends with ")" and SignatureMark occurs within the last
// tailWindow characters of the untrimmed body.
//
// A body that ends in ")" and quotes the mark near its end is a false
// positive and will never be signed.
func HasEndSignature(body string) bool {
	if !strings.HasSuffix(strings.TrimSpace(body), ")") {
		return false
	}
	return strings.Contains(tail(body, tailWindow), SignatureMark)
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := len(s)
	for ; n > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

// Sign returns body with trailing whitespace removed and template appended.
func Sign(body, template string) string {
	return strings.TrimRightFunc(body, unicode.IsSpace) + template
}
