package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoPlaylist/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Title normalization limits. Scraped playlist titles routinely contain
// keyword-stuffed repeats and embedded newlines.
const (
	titleMaxRunes = 200
	titleEllipsis = "..."
	repeatUnitMin = 5
	repeatUnitMax = 50
	repeatMinRuns = 3
)

// NormalizeTitle cleans a raw playlist or video title: newlines become
// spaces, whitespace runs collapse, consecutive repeated phrases collapse
// to a single occurrence, and the result is capped at 200 runes.
// Idempotent: NormalizeTitle(NormalizeTitle(s)) == NormalizeTitle(s).
func NormalizeTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = collapseRepeats(s)
	if utf8.RuneCountInString(s) > titleMaxRunes {
		r := []rune(s)
		cut := titleMaxRunes - len([]rune(titleEllipsis))
		s = strings.TrimRight(string(r[:cut]), " ") + titleEllipsis
	}
	return s
}

// collapseRepeats replaces any phrase of 5-50 runes repeated 3+ times in a
// row with a single occurrence. Go's regexp has no backreferences, so this
// is a direct scan. Shortest repeating unit wins, matching what a
// non-greedy backreference pattern would pick.
func collapseRepeats(s string) string {
	r := []rune(s)
	out := make([]rune, 0, len(r))
	i := 0
	for i < len(r) {
		collapsed := false
		for unit := repeatUnitMin; unit <= repeatUnitMax && i+repeatMinRuns*unit <= len(r); unit++ {
			runs := 1
			for i+(runs+1)*unit <= len(r) && string(r[i+runs*unit:i+(runs+1)*unit]) == string(r[i:i+unit]) {
				runs++
			}
			if runs >= repeatMinRuns {
				out = append(out, r[i:i+unit]...)
				i += runs * unit
				collapsed = true
				break
			}
		}
		if !collapsed {
			out = append(out, r[i])
			i++
		}
	}
	return string(out)
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}
