package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONOutput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare object untouched",
			content: `{"op": "replace"}`,
			want:    `{"op": "replace"}`,
		},
		{
			name:    "markdown fence stripped",
			content: "```json\n{\"op\": \"replace\"}\n```",
			want:    `{"op": "replace"}`,
		},
		{
			name:    "leading prose stripped",
			content: `Here is the patch you asked for: [{"op": "add", "path": "/cas/-", "value": "68-26-8"}]`,
			want:    `[{"op": "add", "path": "/cas/-", "value": "68-26-8"}]`,
		},
		{
			name:    "trailing prose stripped",
			content: `{"op": "replace"} Let me know if you need anything else.`,
			want:    `{"op": "replace"}`,
		},
		{
			name:    "fence and prose together",
			content: "Sure!\n```json\n[{\"op\": \"remove\", \"path\": \"/NOAEL/0\"}]\n```\nDone.",
			want:    `[{"op": "remove", "path": "/NOAEL/0"}]`,
		},
		{
			name:    "whitespace trimmed",
			content: "  \n {\"a\": 1} \n ",
			want:    `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONOutput(tt.content))
		})
	}
}
