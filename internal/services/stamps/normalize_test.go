package stamps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"scheme and www with trailing space", "https://WWW.Quest-Stamp-001 ", "QUEST-STAMP-001"},
		{"already normal", "QUEST-STAMP-002", "QUEST-STAMP-002"},
		{"lower case", "quest-stamp-003", "QUEST-STAMP-003"},
		{"http scheme", "http://quest-stamp-001", "QUEST-STAMP-001"},
		{"mixed case scheme", "HtTpS://quest-stamp-001", "QUEST-STAMP-001"},
		{"www only", "www.quest-stamp-001", "QUEST-STAMP-001"},
		{"surrounding whitespace", "\t quest-stamp-001 \n", "QUEST-STAMP-001"},
		{"whitespace after scheme", "https:// quest-stamp-001", "QUEST-STAMP-001"},
		{"repeated scheme", "https://https://quest-stamp-001", "QUEST-STAMP-001"},
		{"scheme in the middle is kept", "quest-https://x", "QUEST-HTTPS://X"},
		{"empty", "", ""},
		{"only scheme", "https://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func FuzzNormalizeIsIdempotent(f *testing.F) {
	for _, seed := range []string{
		"https://WWW.Quest-Stamp-001 ",
		"http://www. www.x",
		"  HTTPS://HTTP://WWW.WWW.",
		"ß",
		" https://x",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once))
	})
}
