// Package rank decides which playlist actually teaches a topic: relevance
// classification of titles, weighted quality scoring, and concurrent
// candidate ranking with an early exit on exceptional finds.
package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// Classification methods reported to callers.
const (
	MethodLLM   = "llm"
	MethodRules = "rules"
	MethodMixed = "mixed"
)

// ClassifyTitles judges every title against the technology: obvious cases
// are answered by pattern fast paths, the rest go to the LLM in one batched
// call, and any title the LLM leaves unanswered (or all of them, when the
// call fails outright or no keys are configured) falls back to the
// rule-based verdict. The result is always complete and in input order.
func ClassifyTitles(ctx context.Context, titles []string, technology string) ([]engine.RelevanceVerdict, string) {
	verdicts := make([]engine.RelevanceVerdict, len(titles))

	var pending []int
	usedRules := false
	for i, t := range titles {
		normalized := engine.NormalizeTitle(t)
		if fv := fastVerdict(normalized, technology); fv != nil {
			verdicts[i] = *fv
			usedRules = true
			continue
		}
		verdicts[i] = engine.RelevanceVerdict{Title: normalized}
		pending = append(pending, i)
	}

	usedLLM := false
	if len(pending) > 0 {
		batch := make([]string, len(pending))
		for j, idx := range pending {
			batch[j] = verdicts[idx].Title
		}

		answered, have, err := classifyLLM(ctx, batch, technology)
		if err != nil {
			if err != engine.ErrNoLLM {
				slog.Warn("rank: LLM classification failed, using rules",
					slog.String("technology", technology), slog.Any("error", err))
			}
			have = make([]bool, len(pending))
		}
		backfilled := false
		for j, idx := range pending {
			if err == nil && have[j] {
				verdicts[idx] = answered[j]
				usedLLM = true
				continue
			}
			verdicts[idx] = ruleVerdict(verdicts[idx].Title, technology)
			usedRules = true
			backfilled = true
		}
		if backfilled {
			engine.IncrClassifierFallback()
		}
	}

	switch {
	case usedLLM && usedRules:
		return verdicts, MethodMixed
	case usedLLM:
		return verdicts, MethodLLM
	default:
		return verdicts, MethodRules
	}
}

// classifyLLM sends one batched request and aligns the answer to titles.
// have[i] reports whether titles[i] got a verdict: a partial answer (count
// mismatch salvaged by title match) is retried like any other failure, and
// only surfaces from the last attempt when nothing better arrived.
func classifyLLM(ctx context.Context, titles []string, technology string) ([]engine.RelevanceVerdict, []bool, error) {
	if len(titles) == 0 {
		return nil, nil, nil
	}

	prompt := engine.BuildRelevancePrompt(titles, technology)

	// A plain RetryDo would give up on malformed answers; here a bad parse
	// is as retryable as a 429, and every attempt rotates to the next key.
	rc := engine.LLMRetryConfig
	var (
		lastErr     error
		bestVerdict []engine.RelevanceVerdict
		bestHave    []bool
	)
	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		raw, err := engine.CallLLM(ctx, engine.RelevanceSystemPrompt, prompt)
		if err == engine.ErrNoLLM {
			return nil, nil, err
		}
		if err == nil {
			verdicts, have, answered, perr := parseRelevanceResponse(raw, titles, technology)
			if perr == nil && answered == len(titles) {
				return verdicts, have, nil
			}
			if perr == nil {
				bestVerdict, bestHave = verdicts, have
				err = fmt.Errorf("partial answer: %d of %d titles", answered, len(titles))
			} else {
				err = fmt.Errorf("parse relevance response: %w (raw: %s)",
					perr, engine.TruncateRunes(raw, 200, "..."))
			}
		}
		lastErr = err

		if attempt < rc.MaxRetries {
			wait := rc.InitialWait * (1 << attempt)
			if wait > rc.MaxWait {
				wait = rc.MaxWait
			}
			slog.Debug("rank: retrying classification",
				slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}
	}
	if bestVerdict != nil {
		return bestVerdict, bestHave, nil
	}
	return nil, nil, lastErr
}

// relevanceItem is one element of the model's JSON answer.
type relevanceItem struct {
	Title      string  `json:"title"`
	IsRelevant bool    `json:"is_relevant"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseRelevanceResponse decodes the model's answer, accepting a bare array
// or the {"results": [...]} / {"evaluations": [...]} wrappers models drift
// into. A full-length answer maps to inputs by position; a shorter or longer
// one is matched by title, leaving unmatched inputs unanswered. answered is
// the number of titles that got a verdict; zero fails the parse.
func parseRelevanceResponse(raw string, titles []string, technology string) ([]engine.RelevanceVerdict, []bool, int, error) {
	items, err := decodeRelevanceItems(raw)
	if err != nil {
		return nil, nil, 0, err
	}

	verdicts := make([]engine.RelevanceVerdict, len(titles))
	have := make([]bool, len(titles))

	if len(items) == len(titles) {
		for i, it := range items {
			verdicts[i] = itemVerdict(it, titles[i], technology)
			have[i] = true
		}
		return verdicts, have, len(titles), nil
	}

	byTitle := make(map[string]relevanceItem, len(items))
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Title))
		if _, dup := byTitle[key]; !dup {
			byTitle[key] = it
		}
	}
	answered := 0
	for i, t := range titles {
		it, ok := byTitle[strings.ToLower(t)]
		if !ok {
			continue
		}
		verdicts[i] = itemVerdict(it, t, technology)
		have[i] = true
		answered++
	}
	if answered == 0 {
		return nil, nil, 0, fmt.Errorf("expected %d items, got %d and none matched by title", len(titles), len(items))
	}
	return verdicts, have, answered, nil
}

func itemVerdict(it relevanceItem, title, technology string) engine.RelevanceVerdict {
	tech := CanonicalTech(technology)
	reason := strings.TrimSpace(it.Reason)
	if reason == "" {
		// Verdicts always carry an explanation, even when the model skips it.
		if it.IsRelevant {
			reason = "judged relevant to " + tech
		} else {
			reason = "judged not relevant to " + tech
		}
	}
	v := engine.RelevanceVerdict{
		Title:      title,
		Relevant:   it.IsRelevant,
		Confidence: clamp01(it.Confidence),
		Reason:     engine.TruncateAtWord(reason, 300),
	}
	if mentionsTech(strings.ToLower(title), tech) {
		v.Technologies = []string{tech}
	}
	return v
}

func decodeRelevanceItems(raw string) ([]relevanceItem, error) {
	var items []relevanceItem
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items, nil
	}

	var wrapper struct {
		Results     []relevanceItem `json:"results"`
		Evaluations []relevanceItem `json:"evaluations"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil {
		if len(wrapper.Results) > 0 {
			return wrapper.Results, nil
		}
		if len(wrapper.Evaluations) > 0 {
			return wrapper.Evaluations, nil
		}
	}

	// Salvage an array buried in prose.
	if arr := engine.ExtractJSONArray(raw); arr != nil {
		if err := json.Unmarshal(arr, &items); err == nil {
			return items, nil
		}
	}

	// Or a wrapper object buried in prose, when a stray bracket earlier in
	// the text defeats the array salvage.
	if obj := engine.ExtractJSONObject(raw); obj != nil {
		var salvaged struct {
			Results     []relevanceItem `json:"results"`
			Evaluations []relevanceItem `json:"evaluations"`
		}
		if err := json.Unmarshal(obj, &salvaged); err == nil {
			if len(salvaged.Results) > 0 {
				return salvaged.Results, nil
			}
			if len(salvaged.Evaluations) > 0 {
				return salvaged.Evaluations, nil
			}
		}
	}
	return nil, fmt.Errorf("no JSON array in response")
}
