package rank

import (
	"math"
	"testing"
)

func TestCanonicalTech(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "go"},
		{"Go", "go"},
		{"k8s", "kubernetes"},
		{"JS", "javascript"},
		{"node js", "node.js"},
		{"  Python3 ", "python"},
		{"elixir", "elixir"},
	}
	for _, tt := range tests {
		if got := CanonicalTech(tt.in); got != tt.want {
			t.Errorf("CanonicalTech(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s    string
		word string
		want bool
	}{
		{"learn go in 2025", "go", true},
		{"django for beginners", "go", false},
		{"go!", "go", true},
		{"c++ crash course", "c++", true},
		{"node.js from scratch", "node.js", true},
		{"golang tutorial", "go", false},
		{"go", "go", true},
		{"rust 101", "rust", true},
	}
	for _, tt := range tests {
		if got := containsWord(tt.s, tt.word); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.s, tt.word, got, tt.want)
		}
	}
}

func TestMentionsTechAliases(t *testing.T) {
	if !mentionsTech("golang full course", "go") {
		t.Error("alias golang should count as go")
	}
	if !mentionsTech("learn js fast", "javascript") {
		t.Error("alias js should count as javascript")
	}
	if mentionsTech("json deep dive", "javascript") {
		t.Error("js inside json is not a mention")
	}
}

func TestRuleVerdict(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		tech       string
		relevant   bool
		confidence float64
	}{
		{
			"tech plus educational term",
			"Python Tutorial for Beginners",
			"python",
			true, 0.7, // 0.4 mention + 0.3 term
		},
		{
			"tech alone is not enough",
			"Python highlights",
			"python",
			false, 0.4,
		},
		{
			"everything stacked",
			"Go Full Course 2025 - freeCodeCamp",
			"go",
			true, 1.0, // 0.4 + 0.3 + 0.2 + 0.1
		},
		{
			"entertainment pattern kills it",
			"python memes compilation tutorial",
			"python",
			false, 0.4, // 0.4 + 0.3 - 0.3
		},
		{
			"no signals at all",
			"Cooking pasta at home",
			"rust",
			false, 0.0,
		},
		{
			"educational term alone is not enough",
			"Complete tutorial",
			"programming",
			false, 0.3,
		},
		{
			"broad topic without the technology",
			"Web Development Full Course",
			"javascript",
			false, 0.0, // 0.3 term - 0.3 broad
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ruleVerdict(tt.title, tt.tech)
			if v.Relevant != tt.relevant {
				t.Errorf("relevant = %v, want %v (reason: %s)", v.Relevant, tt.relevant, v.Reason)
			}
			if math.Abs(v.Confidence-tt.confidence) > 1e-9 {
				t.Errorf("confidence = %.2f, want %.2f (reason: %s)", v.Confidence, tt.confidence, v.Reason)
			}
		})
	}
}

func TestRuleVerdictTagsTechnologies(t *testing.T) {
	v := ruleVerdict("Golang Crash Course", "go")
	if len(v.Technologies) != 1 || v.Technologies[0] != "go" {
		t.Errorf("technologies = %v, want [go]", v.Technologies)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.2) != 0 || clamp01(1.4) != 1 || clamp01(0.5) != 0.5 {
		t.Error("clamp01 bounds wrong")
	}
}
