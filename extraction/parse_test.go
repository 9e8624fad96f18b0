package extraction

import (
	"testing"

	"github.com/poiesic/lorekeeper/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "plain array",
			input: `[{"name":"Aria"}]`,
			want:  []any{map[string]any{"name": "Aria"}},
		},
		{
			name:  "surrounding whitespace",
			input: "\n  [1, 2]  \n",
			want:  []any{float64(1), float64(2)},
		},
		{
			name:  "fenced json block",
			input: "Here you go:\n```json\n[{\"name\":\"Aria\"}]\n```\nDone.",
			want:  []any{map[string]any{"name": "Aria"}},
		},
		{
			name:  "fenced block without language",
			input: "```\n[]\n```",
			want:  []any{},
		},
		{
			name:  "array embedded in prose",
			input: `Sure! [{"name":"Aria"}] Hope that helps.`,
			want:  []any{map[string]any{"name": "Aria"}},
		},
		{
			name:  "object embedded in prose",
			input: `The result is {"name":"Aria"} as requested.`,
			want:  map[string]any{"name": "Aria"},
		},
		{
			name:  "unquoted key repaired",
			input: `[{name":"Aria","content":"A knight."}]`,
			want:  []any{map[string]any{"name": "Aria", "content": "A knight."}},
		},
		{
			name:  "trailing comma repaired",
			input: "```json\n[{\"name\":\"Aria\",},]\n```",
			want:  []any{map[string]any{"name": "Aria"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Unparseable(t *testing.T) {
	for _, input := range []string{"", "no json here", "[unclosed", "{\"a\": }"} {
		_, err := ExtractJSON(input)
		assert.ErrorIs(t, err, ErrUnparseable, "input %q", input)
	}
}

func TestParseEntries(t *testing.T) {
	raw := `[
		{"name": "Aria", "key": "Aria,the knight", "content": "A wandering knight.", "comment": "character", "priority": 50},
		{"key": "Castle Black, the Wall", "content": "A fortress.", "priority": "30"},
		{"keys": ["Dawn", "sword"], "content": "An ancient blade."},
		{"name": "Nameless", "content": ""},
		{"name": "", "key": "", "content": "orphan"},
		"not an object",
		{"name": "Odd", "content": "odd priority", "priority": "high", "enabled": false}
	]`

	entries, err := ParseEntries(raw)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, core.Entry{
		Name: "Aria", Key: "Aria,the knight", Content: "A wandering knight.",
		Comment: "character", Priority: 50, Enabled: true,
	}, entries[0])

	assert.Equal(t, "Castle Black", entries[1].Name)
	assert.Equal(t, 30, entries[1].Priority)

	assert.Equal(t, "Dawn", entries[2].Name)
	assert.Equal(t, "Dawn,sword", entries[2].Key)
	assert.Equal(t, core.DefaultPriority, entries[2].Priority)

	assert.Equal(t, "Odd", entries[3].Name)
	assert.Equal(t, core.DefaultPriority, entries[3].Priority)
	assert.True(t, entries[3].Enabled)
	assert.Equal(t, "Odd", entries[3].Key)
}

func TestParseEntries_NotArray(t *testing.T) {
	_, err := ParseEntries(`{"name": "Aria", "content": "x"}`)
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestParseEntries_Empty(t *testing.T) {
	entries, err := ParseEntries("[]")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCoercePriority(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(7), 7},
		{float64(7.9), 7},
		{"12", 12},
		{" 3.5 ", 3},
		{"", core.DefaultPriority},
		{"abc", core.DefaultPriority},
		{nil, core.DefaultPriority},
		{true, core.DefaultPriority},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coercePriority(tt.in), "input %#v", tt.in)
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing quote after brace", `{name":"x"}`, `{"name":"x"}`},
		{"missing quote after comma", `{"a":1, type":"b"}`, `{"a":1, "type":"b"}`},
		{"literals untouched", `[true, false, null]`, `[true, false, null]`},
		{"trailing comma in array", `[1, 2, ]`, `[1, 2 ]`},
		{"comma inside string kept", `["a,]"]`, `["a,]"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.input))
		})
	}
}
