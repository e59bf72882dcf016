package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoLLM reports that no LLM API keys are configured.
var ErrNoLLM = errors.New("llm: no API keys configured")

// CallLLM sends one chat completion through the key pool and returns the
// raw text answer with markdown fences stripped. Each call advances the
// pool, so retrying naturally lands on the next key.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	if cfg.LLMPool.Size() == 0 {
		return "", ErrNoLLM
	}
	IncrLLMCall()

	out, err := cfg.LLMPool.Next().Complete(ctx, system, prompt)
	if err != nil {
		IncrLLMError()
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return stripFences(out), nil
}

// stripFences removes markdown code fences models wrap JSON answers in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ExtractJSONArray salvages the first complete JSON array from chatty model
// output ("Here are the results: [...]"). Returns nil if none found.
func ExtractJSONArray(s string) []byte {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return []byte(s[start : i+1])
				}
			}
		}
		prev = c
	}
	return nil
}

// ExtractJSONObject salvages the first complete JSON object from s.
func ExtractJSONObject(s string) []byte {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i := start; i < len(s); i++ {
		c := s[i]
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
					return []byte(s[start : i+1])
				}
			}
		}
		prev = c
	}
	return nil
}
