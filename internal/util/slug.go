package util

import "strings"

// SlugBase derives a URL-safe slug base from a document title: lowercased,
// with every run of non-alphanumeric characters collapsed to a single hyphen.
func SlugBase(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
