package sources

import (
	"testing"

	"google.golang.org/api/youtube/v3"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"PT1H2M3S", 3723},
		{"PT15M", 900},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT0S", 0},
		{"P1D", -1},
		{"", -1},
		{"PT", 0},
		{"1:02:03", -1},
	}
	for _, tt := range tests {
		if got := parseISODuration(tt.in); got != tt.want {
			t.Errorf("parseISODuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPlaylistCeiling(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 500},
		{-1, 500},
		{50, 50},
		{500, 500},
		{9999, 500},
	}
	for _, tt := range tests {
		if got := playlistCeiling(tt.in); got != tt.want {
			t.Errorf("playlistCeiling(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSkipPlaylistItem(t *testing.T) {
	ok := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "dQw4w9WgXcQ"},
		Snippet:        &youtube.PlaylistItemSnippet{Title: "Lesson 1"},
	}
	if skipPlaylistItem(ok) {
		t.Error("normal item should not be skipped")
	}

	private := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "dQw4w9WgXcQ"},
		Snippet:        &youtube.PlaylistItemSnippet{Title: "Private video"},
	}
	if !skipPlaylistItem(private) {
		t.Error("private video should be skipped")
	}

	deleted := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "dQw4w9WgXcQ"},
		Snippet:        &youtube.PlaylistItemSnippet{Title: "Deleted video"},
	}
	if !skipPlaylistItem(deleted) {
		t.Error("deleted video should be skipped")
	}

	noID := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{},
		Snippet:        &youtube.PlaylistItemSnippet{Title: "x"},
	}
	if !skipPlaylistItem(noID) {
		t.Error("item without video id should be skipped")
	}
}
