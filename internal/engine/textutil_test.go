package engine

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Python Tutorial for Beginners", "Python Tutorial for Beginners"},
		{"newlines", "Python\nTutorial\r\nfor Beginners", "Python Tutorial for Beginners"},
		{"whitespace runs", "Python    Tutorial\t\tfor  Beginners", "Python Tutorial for Beginners"},
		{"leading trailing", "  Python Tutorial  ", "Python Tutorial"},
		{"repeated phrase", strings.Repeat("Learn Python ", 5) + "Now", "Learn Python Now"},
		{"two repeats kept", "Learn Python Learn Python Now", "Learn Python Learn Python Now"},
		{"short repeats kept", "go go go go go", "go go go go go"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleTruncation(t *testing.T) {
	// Non-periodic filler so repeat collapsing leaves it alone.
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "t%d ", i)
	}
	long := sb.String()
	got := NormalizeTitle(long)
	if n := utf8.RuneCountInString(got); n != titleMaxRunes {
		t.Errorf("truncated length = %d runes, want %d", n, titleMaxRunes)
	}
	if !strings.HasSuffix(got, titleEllipsis) {
		t.Errorf("expected truncation marker suffix, got %q", got[len(got)-10:])
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"Python Tutorial",
		strings.Repeat("React Course ", 7),
		strings.Repeat("x", 500),
		"Mixed\n\n" + strings.Repeat("Vue Basics ", 4) + strings.Repeat("y", 300),
		"Юникод заголовок " + strings.Repeat("\u044d", 250),
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcdeabcdeabcde", "abcde"},
		{"abcdeabcde", "abcdeabcde"},                   // only 2 runs
		{"ababababab", "ababababab"},                   // unit below 5 runes
		{"xx abcdefabcdefabcdef yy", "xx abcdef yy"},   // repeats mid-string
		{"", ""},
	}
	for _, tt := range tests {
		if got := collapseRepeats(tt.in); got != tt.want {
			t.Errorf("collapseRepeats(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
