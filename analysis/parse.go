package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/poiesic/bioorbit/core"
)

// Accepted spellings of each reply field, compared after normalizeKey.
var (
	summaryKeys   = []string{"summary", "1sentencesummary", "onesentencesummary"}
	nextStepsKeys = []string{"nextsteps", "3specificactionablenextsteps", "steps", "actionablenextsteps"}
	riskKeys      = []string{"risklevel", "risk"}
)

// Keys tried, in order, when a next step arrives as an object.
var stepTextKeys = []string{"step", "action", "description", "text", "title"}

// parseAnalysis decodes a model reply. Fields that are missing or of an
// unexpected shape get defaults: an empty summary, no next steps and
// Medium risk. Only a reply that is not a JSON object is an error.
func parseAnalysis(reply string) (core.Analysis, error) {
	text := repairJSON(stripCodeFences(reply))

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		// Some models wrap the object in a one-element array.
		var wrapped []map[string]json.RawMessage
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil || len(wrapped) == 0 {
			return core.Analysis{}, fmt.Errorf("%w: %w", ErrMalformedReply, err)
		}
		raw = wrapped[0]
	}

	fields := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		nk := normalizeKey(k)
		if _, dup := fields[nk]; !dup {
			fields[nk] = v
		}
	}

	analysis := core.Analysis{
		NextSteps: []string{},
		RiskLevel: core.RiskMedium,
	}

	if v, ok := lookup(fields, summaryKeys); ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			analysis.Summary = strings.TrimSpace(s)
		}
	}

	if v, ok := lookup(fields, nextStepsKeys); ok {
		analysis.NextSteps = decodeSteps(v)
	}

	if v, ok := lookup(fields, riskKeys); ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			if level, ok := core.ParseRiskLevel(s); ok {
				analysis.RiskLevel = level
			}
		}
	}

	return analysis, nil
}

func lookup(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// decodeSteps accepts a list of strings, a list of objects carrying the
// step text, or a single string.
func decodeSteps(v json.RawMessage) []string {
	steps := []string{}

	var list []json.RawMessage
	if err := json.Unmarshal(v, &list); err != nil {
		var single string
		if json.Unmarshal(v, &single) == nil && strings.TrimSpace(single) != "" {
			steps = append(steps, strings.TrimSpace(single))
		}
		return steps
	}

	for _, item := range list {
		var s string
		if json.Unmarshal(item, &s) == nil {
			if s = strings.TrimSpace(s); s != "" {
				steps = append(steps, s)
			}
			continue
		}
		var obj map[string]json.RawMessage
		if json.Unmarshal(item, &obj) != nil {
			continue
		}
		normalized := make(map[string]json.RawMessage, len(obj))
		for k, val := range obj {
			normalized[normalizeKey(k)] = val
		}
		if text, ok := lookup(normalized, stepTextKeys); ok {
			if json.Unmarshal(text, &s) == nil && strings.TrimSpace(s) != "" {
				steps = append(steps, strings.TrimSpace(s))
			}
		}
	}
	return steps
}

// normalizeKey lowercases k and drops everything but letters and digits,
// so "riskLevel", "risk_level" and "Risk Level" compare equal.
func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON fixes keys that lost their opening quote, a common failure in
// model output: `{ summary": ...` becomes `{ "summary": ...`.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	i := 0
	for i < len(in) {
		ch := in[i]
		if ch != '{' && ch != ',' {
			out = append(out, ch)
			i++
			continue
		}

		out = append(out, ch)
		i++
		for i < len(in) && unicode.IsSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		keyStart := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_') {
			i++
		}
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[keyStart:i]...)
	}

	return string(out)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
