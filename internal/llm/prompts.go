package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExpansionCount - сколько перефразировок просим у модели
const ExpansionCount = 10

func ExpansionPrompt(question string) string {
	return strings.TrimSpace(fmt.Sprintf(`
# TASK DESCRIPTION

Given a search question you must generate a list of %[1]d similar questions that have the same exact
semantic meaning but are contextually and lexically different to improve search recall.

## Question

Here is the question you must generate expansions for:

Question: %[2]s

# RESPONSE FORMAT

Your response must be a JSON array of %[1]d strings. Each string must be a grammatically correct
question that expands on the original question to improve recall.

# EXPANSION GUIDELINES

1. **Use specific named entities** - mention specific people, locations, organizations, products
   and places in expansions.

2. **Expansions must be highly targeted** - each expansion must be semantically unambiguous and
   use between ten and fifteen words.

3. **Expansions must improve recall** - leverage semantic and contextual expansion:

   - Semantic Example: Swap "climate change" with "global warming" or "environmental change".
   - Contextual Example: Swap "diabetes treatment" with "insulin therapy" or "blood sugar management".
`, ExpansionCount, question))
}

func SentimentPrompt(content string) string {
	return strings.TrimSpace(fmt.Sprintf(`
# TASK DESCRIPTION
On a scale from -1.0 (very negative) to 1.0 (very positive),
please rate the sentiment of the following text and return _only_ the numeric score:
%s

# RESPONSE FORMAT

The response must be a float in [-1.0, 1.0]. No other text must be returned.
`, strings.TrimSpace(content)))
}

// StripFences removes a surrounding markdown code fence and its optional
// "json" tag.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))
	if strings.HasPrefix(strings.ToLower(raw), "json") {
		raw = strings.TrimSpace(raw[len("json"):])
	}
	return raw
}

// ParseExpansions expects a JSON array of exactly ExpansionCount strings.
func ParseExpansions(raw string) ([]string, error) {
	cleaned := StripFences(raw)

	var out []string
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: not a JSON list of strings: %q", ErrInvalidExpansions, cleaned)
	}
	if len(out) != ExpansionCount {
		return nil, fmt.Errorf("%w: got %d expansions, want %d", ErrInvalidExpansions, len(out), ExpansionCount)
	}
	return out, nil
}

// ParseSentiment expects a bare float in [-1, 1].
func ParseSentiment(raw string) (float64, error) {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: not a float: %q", ErrInvalidSentiment, raw)
	}
	if score < -1 || score > 1 {
		return 0, fmt.Errorf("%w: %v outside [-1.0, 1.0]", ErrInvalidSentiment, score)
	}
	return score, nil
}
