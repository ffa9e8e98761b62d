// internal/slug/slug.go
//
// Key and path helpers.
//
// • Make(name) ─ converts arbitrary text into a section key restricted to
//   ASCII a-z, 0-9 and “-”.
// • Path(raw) ─ normalises a tracked page path: one leading slash, no
//   query or fragment, no duplicate or trailing separators.
// • Truncate(s, n) ─ caps s at n characters on a rune boundary.
//
// Rules (Make)
// ------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "section".
//
// Notes
// -----
// • Keys are max 100 characters, the width of website_section.key.
// • Paths are max 255 characters, the width of page_visit.path.  VARCHAR
//   widths count characters, and utf8mb4 rejects split sequences, so
//   limits are applied per rune, never per byte.

package slug

import (
	"strings"
)

const (
	maxKey  = 100
	maxPath = 255
)

// Make converts name → lower-kebab ASCII.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "section"
	}
	if len(s) > maxKey {
		s = strings.TrimRight(s[:maxKey], "-")
	}
	return s
}

// Path cleans raw for storage.  Empty input yields "/".
func Path(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i != -1 {
		raw = raw[:i]
	}

	parts := strings.Split(raw, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}

	p := Truncate("/"+strings.Join(kept, "/"), maxPath)
	if t := strings.TrimRight(p, "/"); t != "" {
		p = t
	}
	return p
}

// Truncate returns s cut to at most n runes.  Invalid UTF-8 is replaced
// with U+FFFD first.  n <= 0 means no limit.
func Truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
