package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/lorekeeper/core"
)

var (
	fencePattern  = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	arrayPattern  = regexp.MustCompile(`\[[\s\S]*\]`)
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractJSON recovers a JSON value from model output. It tries, in order,
// the whole trimmed text, the first fenced code block, and the widest
// [...] then {...} span. If none of those parse, each candidate is tried
// again after repairJSON.
func ExtractJSON(text string) (any, error) {
	text = strings.TrimSpace(text)
	candidates := jsonCandidates(text)

	for _, c := range candidates {
		if v, ok := decode(c); ok {
			return v, nil
		}
	}
	for _, c := range candidates {
		if v, ok := decode(repairJSON(c)); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnparseable, preview(text, 200))
}

func jsonCandidates(text string) []string {
	candidates := []string{text}
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := arrayPattern.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	if m := objectPattern.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	return candidates
}

func decode(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// ParseEntries parses model output into normalized entries.
// Elements that are not objects, or that end up without a name or content,
// are dropped.
func ParseEntries(text string) ([]core.Entry, error) {
	v, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotArray, v)
	}

	entries := make([]core.Entry, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := normalizeEntry(obj)
		if core.ValidateEntry(&entry) != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// normalizeEntry builds an Entry from a decoded JSON object.
func normalizeEntry(obj map[string]any) core.Entry {
	key := stringField(obj["key"])
	if key == "" {
		key = stringField(obj["keys"])
	}

	name := strings.TrimSpace(stringField(obj["name"]))
	if name == "" {
		name = core.FirstKeyToken(key)
	}
	if strings.TrimSpace(key) == "" {
		key = name
	}

	return core.Entry{
		Name:     name,
		Key:      key,
		Content:  stringField(obj["content"]),
		Comment:  stringField(obj["comment"]),
		Priority: coercePriority(obj["priority"]),
		Enabled:  true,
	}
}

// stringField renders a JSON value as text. Arrays of terms are joined with
// commas so that "keys": ["a", "b"] becomes "a,b".
func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := strings.TrimSpace(stringField(p)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// coercePriority accepts numbers and numeric strings; anything else yields
// core.DefaultPriority.
func coercePriority(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return core.DefaultPriority
		}
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return core.DefaultPriority
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
