package stamps

import "strings"

var strippedPrefixes = []string{"HTTPS://", "HTTP://", "WWW."}

// Normalize upper-cases a raw scanned string and strips surrounding
// whitespace plus any leading URL scheme or "www.". It repeats until nothing
// changes, so Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) string {
	code := raw
	for {
		next := strings.TrimSpace(strings.ToUpper(code))
		for _, prefix := range strippedPrefixes {
			next = strings.TrimPrefix(next, prefix)
		}
		if next == code {
			return code
		}
		code = next
	}
}
