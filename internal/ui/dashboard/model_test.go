package dashboard

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateCutsOnRunes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten chars!", 18, "exactly ten chars!"},
		{"a long lesson title", 8, "a long …"},
		{"Lektion über Bäume und Blätter", 12, "Lektion übe…"},
		{"光合作用の基礎を学ぶレッスン", 6, "光合作用の…"},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.max)
		if got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) produced invalid UTF-8", tc.in, tc.max)
		}
	}
}
