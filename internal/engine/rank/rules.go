package rank

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// Rule-based relevance fallback. Used when the LLM is unconfigured or all
// retries fail; also answers the obvious cases without spending a call.

// techAliases maps canonical technology names to the spellings that show up
// in playlist titles.
var techAliases = map[string][]string{
	"javascript": {"js", "java script", "ecmascript"},
	"typescript": {"ts"},
	"python":     {"py", "python3"},
	"c++":        {"cpp", "c plus plus", "cplusplus"},
	"c#":         {"csharp", "c sharp", "dotnet c#"},
	"node.js":    {"node", "nodejs", "node js"},
	"react":      {"reactjs", "react.js", "react js"},
	"angular":    {"angularjs", "angular.js"},
	"vue":        {"vuejs", "vue.js", "vue js"},
	"go":         {"golang"},
	"rust":       {"rustlang"},
	"kubernetes": {"k8s"},
	"postgresql": {"postgres", "psql"},
	"machine learning": {"ml"},
}

// educationalTerms suggest a structured course rather than entertainment.
var educationalTerms = []string{
	"tutorial", "course", "learn", "guide", "bootcamp", "fundamentals",
	"basics", "complete", "beginner", "masterclass", "crash course",
	"full course", "step by step", "introduction", "for beginners",
	"from scratch", "zero to hero", "roadmap",
}

// qualityChannels are known producers of long-form programming courses.
var qualityChannels = []string{
	"freecodecamp", "traversy", "programming with mosh", "net ninja",
	"academind", "corey schafer", "sentdex", "telusko", "tech with tim",
	"bro code", "caleb curry",
}

// negativePatterns mark entertainment formats masquerading as education.
var negativePatterns = []string{
	"#shorts", "shorts", "meme", "funny", "reaction", "reacting",
	"in 60 seconds", "in one minute", "top 10", "top 5", "song",
	"music", "asmr", "gaming", "vlog", "day in the life", "quiz",
}

// broadTerms make a title about everything and nothing when the specific
// technology is absent.
var broadTerms = []string{
	"web development", "programming", "coding", "software engineering",
	"computer science", "software development",
}

// obviousRejectREs catch formats that are never a structured course, so the
// title need not spend an LLM slot.
var obviousRejectREs = []*regexp.Regexp{
	regexp.MustCompile(`\bvs\.?\s`),
	regexp.MustCompile(`\bversus\b`),
	regexp.MustCompile(`in \d+ (seconds|minutes)\b`),
	regexp.MustCompile(`#\w+`),
	regexp.MustCompile(`interview questions?`),
	regexp.MustCompile(`\d+ reasons why`),
	regexp.MustCompile(`^top \d+\b`),
}

// obviousAcceptTemplates are course-title shapes specific enough to accept
// outright once the technology is substituted in.
var obviousAcceptTemplates = []string{
	"complete %s tutorial for beginners",
	"%s full course",
	"%s course for beginners",
	"learn %s step by step",
}

// fastVerdict answers the obvious cases without an LLM call. Returns nil
// when the title needs real classification.
func fastVerdict(title, technology string) *engine.RelevanceVerdict {
	tech := CanonicalTech(technology)
	lower := strings.ToLower(title)

	for _, re := range obviousRejectREs {
		if re.MatchString(lower) {
			return &engine.RelevanceVerdict{
				Title:      title,
				Relevant:   false,
				Confidence: 0.0,
				Reason:     "matches non-course pattern " + fmt.Sprintf("%q", re.String()),
			}
		}
	}
	for _, tmpl := range obviousAcceptTemplates {
		if strings.Contains(lower, fmt.Sprintf(tmpl, tech)) {
			return &engine.RelevanceVerdict{
				Title:        title,
				Relevant:     true,
				Confidence:   1.0,
				Reason:       "matches course-title pattern " + fmt.Sprintf("%q", tmpl),
				Technologies: []string{tech},
			}
		}
	}
	return nil
}

// CanonicalTech lowercases a technology query and resolves aliases to the
// canonical name ("golang" → "go").
func CanonicalTech(technology string) string {
	t := strings.ToLower(strings.TrimSpace(technology))
	for canonical, aliases := range techAliases {
		if t == canonical {
			return canonical
		}
		for _, a := range aliases {
			if t == a {
				return canonical
			}
		}
	}
	return t
}

// mentionsTech reports whether the title names the technology, under any
// known alias, as a standalone word.
func mentionsTech(lowerTitle, tech string) bool {
	names := append([]string{tech}, techAliases[tech]...)
	for _, name := range names {
		if containsWord(lowerTitle, name) {
			return true
		}
	}
	return false
}

// containsWord is a word-boundary substring check that tolerates the
// punctuation in names like "c++" and "node.js".
func containsWord(s, word string) bool {
	for idx := 0; ; {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || isBoundary(s[i-1])
		after := i+len(word) == len(s) || isBoundary(s[i+len(word)])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isBoundary(c byte) bool {
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// ruleVerdict judges a single title against the technology. Relevance is a
// conjunction: the technology must appear, backed by educational intent or
// a known channel, with no disqualifying pattern and no broad-topic cop-out.
// Confidence is a separate additive score from the same signals, clamped
// to [0,1].
func ruleVerdict(title, technology string) engine.RelevanceVerdict {
	tech := CanonicalTech(technology)
	lower := strings.ToLower(title)

	confidence := 0.0
	var reasons []string
	var techs []string

	hasTech := mentionsTech(lower, tech)
	if hasTech {
		confidence += 0.4
		reasons = append(reasons, "mentions "+tech)
		techs = append(techs, tech)
	}

	educational := false
	for _, term := range educationalTerms {
		if strings.Contains(lower, term) {
			educational = true
			confidence += 0.3
			reasons = append(reasons, "educational term "+fmt.Sprintf("%q", term))
			break
		}
	}

	knownChannel := false
	for _, ch := range qualityChannels {
		if strings.Contains(lower, ch) {
			knownChannel = true
			confidence += 0.2
			reasons = append(reasons, "known quality channel")
			break
		}
	}

	if strings.Contains(lower, "2024") || strings.Contains(lower, "2025") || strings.Contains(lower, "2026") {
		confidence += 0.1
		reasons = append(reasons, "recent year in title")
	}

	negative := false
	for _, neg := range negativePatterns {
		if strings.Contains(lower, neg) {
			negative = true
			confidence -= 0.3
			reasons = append(reasons, "entertainment pattern "+fmt.Sprintf("%q", neg))
			break
		}
	}

	tooBroad := false
	if !hasTech {
		for _, term := range broadTerms {
			if strings.Contains(lower, term) {
				tooBroad = true
				confidence -= 0.3
				reasons = append(reasons, "broad topic without "+tech)
				break
			}
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no course signals for "+tech)
	}

	return engine.RelevanceVerdict{
		Title:        title,
		Relevant:     hasTech && (educational || knownChannel) && !negative && !tooBroad,
		Confidence:   clamp01(confidence),
		Reason:       strings.Join(reasons, "; "),
		Technologies: techs,
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
