package engine

import (
	"fmt"
	"strings"
)

// RelevanceSystemPrompt pins the classifier to strict JSON output.
const RelevanceSystemPrompt = `You are a strict reviewer of educational programming content. You judge whether YouTube playlists actually teach a given technology. Respond with JSON only, no prose.`

// Example playlist titles shown to the model, with TECH substituted for the
// target technology. Keeping them generic stops the model anchoring on one
// language's ecosystem.
var relevanceGoodExamples = []string{
	"TECH Tutorial for Beginners - Full Course",
	"Complete TECH Course 2025",
	"Learn TECH from Scratch",
	"TECH Crash Course",
	"TECH Fundamentals Step by Step",
}

var relevanceBadExamples = []string{
	"Top 10 TECH Tricks You Won't Believe",
	"TECH in 60 Seconds #shorts",
	"A Day in the Life of a TECH Developer",
	"TECH Memes Compilation",
	"Why I Quit TECH",
}

// BuildRelevancePrompt renders the batched classification prompt: every
// title in one request, answered as one JSON array in the same order.
func BuildRelevancePrompt(titles []string, technology string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Target technology: %s\n\n", technology)
	sb.WriteString("Judge each playlist title below: is it an educational playlist that teaches the target technology?\n\n")

	sb.WriteString("Examples of RELEVANT titles:\n")
	for _, ex := range relevanceGoodExamples {
		sb.WriteString("- " + strings.ReplaceAll(ex, "TECH", technology) + "\n")
	}
	sb.WriteString("\nExamples of NOT RELEVANT titles:\n")
	for _, ex := range relevanceBadExamples {
		sb.WriteString("- " + strings.ReplaceAll(ex, "TECH", technology) + "\n")
	}

	sb.WriteString("\nTitles to judge:\n")
	for i, t := range titles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}

	sb.WriteString(`
Answer with a JSON array, one object per title, in the same order:
[{"title": "...", "is_relevant": true, "confidence": 0.9, "reason": "short explanation"}]

Rules:
- confidence is a number between 0 and 1
- the technology name or a well-known alias must appear in the title
- entertainment, shorts, memes, vlogs and news are NOT relevant
- comparison ("X vs Y"), interview-question and "top N" listicle playlists are NOT relevant
- broad umbrella topics ("web development", "programming") without the specific technology are NOT relevant
- a different technology that merely mentions the target is NOT relevant
- return exactly one object per input title`)

	return sb.String()
}
