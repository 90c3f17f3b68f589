package index

import "testing"

func TestMatchExpr(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"  go   lang ":  `"go" "lang"`,
		`say "hi"`:      `"say" """hi"""`,
		"title:x OR y*": `"title:x" "OR" "y*"`,
	}
	for in, want := range tests {
		if got := matchExpr(in); got != want {
			t.Errorf("matchExpr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"plain":   "%plain%",
		" 50% ":   `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
