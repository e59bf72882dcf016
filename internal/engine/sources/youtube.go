package sources

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Shared YouTube URL handling and text parsers used by all three tiers.

const ytInitialDataMarker = "var ytInitialData = "

var (
	videoIDRE    = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
	playlistIDRE = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	bareVideoRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	barePlistRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{13,}$`)
)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// Bare IDs pass through unchanged.
func ExtractVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := videoIDRE.FindStringSubmatch(raw); len(m) >= 2 {
		return m[1]
	}
	if bareVideoRE.MatchString(raw) {
		return raw
	}
	return ""
}

// ExtractPlaylistID pulls the playlist ID from a URL's list= parameter.
// Bare IDs pass through unchanged.
func ExtractPlaylistID(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := playlistIDRE.FindStringSubmatch(raw); len(m) >= 2 {
		return m[1]
	}
	if !strings.Contains(raw, "/") && barePlistRE.MatchString(raw) {
		return raw
	}
	return ""
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical playlist URL for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// extractInitialData locates the ytInitialData blob embedded in a YouTube
// HTML page and returns its raw JSON, or nil when absent.
func extractInitialData(body []byte) []byte {
	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil
	}
	return extractJSON(body[idx+len(ytInitialDataMarker):])
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// parseDigits parses a count like "1,234,567 views" by keeping digits only.
// Returns -1 when the string holds no digits.
func parseDigits(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return -1
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// parseApproxCount parses abbreviated counts as rendered in page UI:
// "1.2M views", "847K views", "No views". Returns -1 when unparseable.
func parseApproxCount(s string) int64 {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " views")
	s = strings.TrimSuffix(s, " view")
	if s == "no" || s == "" {
		if s == "no" {
			return 0
		}
		return -1
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "b"):
		mult, s = 1_000_000_000, strings.TrimSuffix(s, "b")
	case strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult, s = 1_000, strings.TrimSuffix(s, "k")
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return int64(f * float64(mult))
}

// parseClockDuration parses "1:02:03" or "12:34" into seconds.
// Returns -1 when the string is not a clock duration.
func parseClockDuration(s string) int64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return -1
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return -1
		}
		total = total*60 + n
	}
	return total
}

// firstRunText pulls runs[0].text from the title/byline shapes that appear
// throughout Innertube JSON.
type runsText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r runsText) String() string {
	if r.SimpleText != "" {
		return r.SimpleText
	}
	if len(r.Runs) > 0 {
		var b strings.Builder
		for _, run := range r.Runs {
			b.WriteString(run.Text)
		}
		return b.String()
	}
	return ""
}

// walkJSON recursively visits every object in v, calling visit with each
// object's keys. visit returns false to stop the walk early.
func walkJSON(v json.RawMessage, visit func(obj map[string]json.RawMessage) bool) {
	stop := false
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if stop {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if !visit(obj) {
				stop = true
				return
			}
			for _, child := range obj {
				walk(child)
				if stop {
					return
				}
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				walk(item)
				if stop {
					return
				}
			}
		}
	}
	walk(v)
}
