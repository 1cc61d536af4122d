// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package judge

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// rubricSystemPrompt is the fixed scoring rubric. The rubric is part of the
// judge's contract: changing it changes score distributions, so it stays a
// compile-time constant rather than configuration.
const rubricSystemPrompt = `You are a strict content quality judge for a personal learning feed.
Score the given content fragment from 0 to 100 for insight density.

Reward:
- Named frameworks, models, or principles
- Specific, actionable tactics
- Memorable articulation of an idea
- Novel or counterintuitive claims backed by reasoning or numbers

Penalize:
- Generic or canonical advice anyone could write
- Vague motivational filler
- Promotional or self-referential material

Respond with ONLY a JSON object, no other text:
{"score": <0-100>, "reasoning": "<one sentence>"}`

// userPrompt wraps the chunk text for the judge.
func userPrompt(text string) string {
	return "Content fragment:\n\n" + text
}

// rawVerdict is the loosely-typed provider response before validation.
type rawVerdict struct {
	Score     *float64 `json:"score"`
	Reasoning string   `json:"reasoning"`
}

// parseVerdict validates a provider response into a Verdict. Providers
// sometimes wrap JSON in code fences or prose; parseVerdict extracts the
// first JSON object and rejects anything structurally invalid or out of
// range rather than letting it into the scoring core.
func parseVerdict(raw string) (Verdict, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return Verdict{}, fmt.Errorf("no JSON object in response %q", truncate(raw, 120))
	}

	var rv rawVerdict
	if err := json.Unmarshal([]byte(payload), &rv); err != nil {
		return Verdict{}, fmt.Errorf("malformed JSON: %w", err)
	}

	if rv.Score == nil {
		return Verdict{}, fmt.Errorf("response missing score field")
	}
	if *rv.Score < 0 || *rv.Score > 100 {
		return Verdict{}, fmt.Errorf("score %f out of range [0,100]", *rv.Score)
	}

	return Verdict{Score: *rv.Score, Reasoning: strings.TrimSpace(rv.Reasoning)}, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// String contents do not affect nesting.
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
