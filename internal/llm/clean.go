package llm

import "strings"

// CleanJSONOutput strips the prose and markdown fences models wrap around
// JSON: leading text before the first brace or bracket, ``` fences, and
// trailing text after the last closing brace or bracket.
func CleanJSONOutput(content string) string {
	clean := strings.TrimSpace(content)

	if i := strings.IndexAny(clean, "{["); i > 0 {
		clean = clean[i:]
	}

	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if i := strings.LastIndexAny(clean, "}]"); i >= 0 {
		clean = clean[:i+1]
	}

	return clean
}
