package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// entrySchema describes the final output: an array of lore entries.
var entrySchema = map[string]any{
	"type":    "array",
	"items": map[string]any{
		"type":     "object",
		"required": []string{"name", "key", "content", "comment", "priority", "enabled"},
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"key":      map[string]any{"type": "string"},
			"content":  map[string]any{"type": "string", "minLength": 1},
			"comment":  map[string]any{"type": "string"},
			"priority": map[string]any{"type": "integer"},
			"enabled":  map[string]any{"type": "boolean"},
		},
	},
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(entrySchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("entries.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("entries.json")
})

// Verify checks that data is a JSON array of entries and returns how many
// it holds.
func Verify(data []byte) (int, error) {
	schema, err := compileSchema()
	if err != nil {
		return 0, fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	if err := schema.Validate(v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	items, _ := v.([]any)
	return len(items), nil
}

// VerifyLines checks JSON Lines data, one entry per non-blank line.
func VerifyLines(data []byte) (int, error) {
	var items []json.RawMessage
	for n, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return 0, fmt.Errorf("%w: line %d is not JSON", ErrSchemaViolation, n+1)
		}
		items = append(items, line)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	array, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	return Verify(array)
}

// VerifyFile runs Verify, or VerifyLines for .jsonl files, on the file at
// path.
func VerifyFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if FormatFromPath(path) == FormatJSONL {
		return VerifyLines(data)
	}
	return Verify(data)
}
