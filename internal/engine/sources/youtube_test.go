package sources

import (
	"encoding/json"
	"testing"
)

func TestParseApproxCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1.2M views", 1_200_000},
		{"847K views", 847_000},
		{"1.5B views", 1_500_000_000},
		{"523 views", 523},
		{"1,234 views", 1234},
		{"1 view", 1},
		{"No views", 0},
		{"", -1},
		{"soon", -1},
	}
	for _, tt := range tests {
		if got := parseApproxCount(tt.in); got != tt.want {
			t.Errorf("parseApproxCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDigits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1,234,567 views", 1234567},
		{"42", 42},
		{"no digits here", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := parseDigits(tt.in); got != tt.want {
			t.Errorf("parseDigits(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12:34", 754},
		{"1:02:03", 3723},
		{"0:45", 45},
		{"10:00:00", 36000},
		{"45", -1},
		{"1:2:3:4", -1},
		{"ab:cd", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := parseClockDuration(tt.in); got != tt.want {
			t.Errorf("parseClockDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var next = 2`, `{"a":1}`},
		{"nested", `{"a":{"b":[1,2]}}garbage`, `{"a":{"b":[1,2]}}`},
		{"brace in string", `{"a":"}{"}tail`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"\"}{"}tail`, `{"a":"\"}{"}`},
		{"unterminated", `{"a":1`, ""},
		{"not an object", `[1,2]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractJSON([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("extractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractInitialData(t *testing.T) {
	page := `<html><script>var ytInitialData = {"contents":{"ok":true}};</script></html>`
	got := extractInitialData([]byte(page))
	if string(got) != `{"contents":{"ok":true}}` {
		t.Errorf("extractInitialData = %q", got)
	}
	if extractInitialData([]byte("<html>no data</html>")) != nil {
		t.Error("expected nil for page without marker")
	}
}

func TestRunsText(t *testing.T) {
	var simple runsText
	if err := json.Unmarshal([]byte(`{"simpleText":"Hello"}`), &simple); err != nil {
		t.Fatal(err)
	}
	if simple.String() != "Hello" {
		t.Errorf("simpleText = %q", simple.String())
	}

	var runs runsText
	if err := json.Unmarshal([]byte(`{"runs":[{"text":"1.2M"},{"text":" views"}]}`), &runs); err != nil {
		t.Fatal(err)
	}
	if runs.String() != "1.2M views" {
		t.Errorf("runs = %q", runs.String())
	}

	var empty runsText
	if empty.String() != "" {
		t.Errorf("zero value = %q", empty.String())
	}
}

func TestWalkJSON(t *testing.T) {
	doc := json.RawMessage(`{"a":{"videoRenderer":{"videoId":"x1"}},"b":[{"videoRenderer":{"videoId":"x2"}}]}`)
	var ids []string
	walkJSON(doc, func(obj map[string]json.RawMessage) bool {
		if raw, ok := obj["videoId"]; ok {
			var id string
			if json.Unmarshal(raw, &id) == nil {
				ids = append(ids, id)
			}
		}
		return true
	})
	if len(ids) != 2 {
		t.Fatalf("found %d ids, want 2: %v", len(ids), ids)
	}

	// early stop
	count := 0
	walkJSON(doc, func(obj map[string]json.RawMessage) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("walk visited %d objects after stop, want 2", count)
	}
}
