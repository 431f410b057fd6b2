package intent

import (
	"encoding/json"
	"regexp"
	"strings"

	"toxedit/internal/schema"
)

var (
	inciAssignRe = regexp.MustCompile(`inci_name\s*=\s*["']?([^"'\n]+)["']?`)
	inciPrefixRe = regexp.MustCompile(`INCI:\s*([^\n]+)`)
	// Matches a JSON object up to one level of nesting, enough for a
	// payload pasted with an ingredient-name marker line in front.
	jsonObjectRe = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// ExtractINCI pulls an ingredient name out of instruction text, recognizing
// both "inci_name = NAME" and a leading "INCI: NAME" marker line.
func ExtractINCI(text string) string {
	if m := inciAssignRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := inciPrefixRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractJSON finds a JSON object embedded in text. The text may be the
// object itself or carry a prefix such as "INCI: NAME\n{...}".
func ExtractJSON(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed
	}

	if m := jsonObjectRe.FindString(trimmed); m != "" {
		if err := json.Unmarshal([]byte(m), &parsed); err == nil {
			return parsed
		}
	}
	return nil
}

// ExtractFormPayloads returns the metric payloads present in text, keyed by
// lowercase field name. Both bare ("noael") and suffixed ("noael_payload")
// keys are recognized.
func ExtractFormPayloads(text string) map[string]map[string]any {
	parsed := ExtractJSON(text)
	if parsed == nil {
		return nil
	}

	payloads := make(map[string]map[string]any)
	for _, field := range []string{"noael", "dap"} {
		if p, ok := parsed[field].(map[string]any); ok {
			payloads[field] = p
		} else if p, ok := parsed[field+"_payload"].(map[string]any); ok {
			payloads[field] = p
		}
	}
	if len(payloads) == 0 {
		return nil
	}
	return payloads
}

// ExtractSections finds inline `"field": [...]` fragments for registered
// fields inside otherwise free-form text. These are applied on the fast
// path without any generation call.
func ExtractSections(text string) map[string][]any {
	sections := make(map[string][]any)

	fields := make([]string, 0, len(schema.EvidenceFields)+len(schema.MetricFields))
	fields = append(fields, schema.EvidenceFields...)
	fields = append(fields, schema.MetricFields...)

	for _, field := range fields {
		re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*\[`)
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		// loc[1]-1 is the opening bracket; entries nest arrays (e.g. the
		// data sub-field), so the fragment ends at the balanced close, not
		// the first ']'.
		fragment := balancedArray(text[loc[1]-1:])
		if fragment == "" {
			continue
		}
		var data []any
		if err := json.Unmarshal([]byte(fragment), &data); err != nil {
			continue
		}
		sections[field] = data
	}

	if len(sections) == 0 {
		return nil
	}
	return sections
}

// balancedArray returns the JSON array starting at s[0] == '[', tracking
// bracket depth and skipping string contents (including escaped quotes).
// It returns "" when the array never closes.
func balancedArray(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
