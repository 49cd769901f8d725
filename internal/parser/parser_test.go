package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFencedPayload(t *testing.T) {
	src := []byte("Here you go:\n\n```python\n[print(1)]\n```\n\n```JSON\n{\"operation\": \"Delete\", \"line\": 1}\n```\n")

	body, ok := fencedPayload(src, "json")
	require.True(t, ok)
	assert.Equal(t, `{"operation": "Delete", "line": 1}`, body)

	// Untagged lookups take the first fence opening an array.
	body, ok = fencedPayload(src, "")
	require.True(t, ok)
	assert.Equal(t, "[print(1)]", body)

	_, ok = fencedPayload([]byte("```json\nnot json\n```\n"), "json")
	assert.False(t, ok)
	_, ok = fencedPayload([]byte("no fences at all"), "")
	assert.False(t, ok)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "bare array",
			reply: `[{"explanation":"x"}]`,
			want:  `[{"explanation":"x"}]`,
		},
		{
			name:  "leading prose",
			reply: "Sure! Here are the changes:\n[{\"operation\":\"Delete\",\"line\":1}]\nGood luck.",
			want:  `[{"operation":"Delete","line":1}]`,
		},
		{
			name:  "fenced json",
			reply: "The fix [see below]:\n\n```json\n[{\"operation\":\"Delete\",\"line\":2}]\n```\n",
			want:  `[{"operation":"Delete","line":2}]`,
		},
		{
			name:  "tagged fence wins over earlier untagged one",
			reply: "```\n[\"noise\"]\n```\n\n```json\n[{\"operation\":\"Delete\",\"line\":3}]\n```\n",
			want:  `[{"operation":"Delete","line":3}]`,
		},
		{
			name:  "untagged fence",
			reply: "```\n[]\n```",
			want:  `[]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONMissing(t *testing.T) {
	_, err := ExtractJSON("I could not find a bug.")
	assert.ErrorIs(t, err, ErrNoJSON)
}
