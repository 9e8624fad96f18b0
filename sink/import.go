package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/lorekeeper/core"
)

// Import saves entries to s as EntryType records. An entry's id is its
// name; nameless entries get wi_<stem>_<n>, or wi_<uuid> when there is no
// source. Repeated ids within one import get a numeric suffix. Every record
// is tagged ExtractedTag plus tags.
func Import(ctx context.Context, s ContentSink, entries []core.Entry, source string, tags []string) (int, error) {
	logger := slog.Default().With("component", "sink")
	allTags := normalizeTags(append([]string{ExtractedTag}, tags...))
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if source == "" {
		stem = ""
	}

	used := make(map[string]int, len(entries))
	saved := 0
	for n, entry := range entries {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		id := EntryID(entry, stem, n)
		if count := used[id]; count > 0 {
			used[id]++
			id = fmt.Sprintf("%s_%d", id, count+1)
		} else {
			used[id] = 1
		}

		data, err := encodeEntry(entry)
		if err != nil {
			return saved, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		if err := s.Save(ctx, EntryType, id, data, allTags); err != nil {
			return saved, fmt.Errorf("save %s: %w", id, err)
		}
		saved++
	}

	logger.Info("imported entries", "count", saved, "tags", allTags)
	return saved, nil
}

// EntryID returns the id Import uses for the n-th entry.
func EntryID(entry core.Entry, stem string, n int) string {
	if name := strings.TrimSpace(entry.Name); name != "" {
		return name
	}
	if stem == "" {
		return "wi_" + uuid.NewString()
	}
	return fmt.Sprintf("wi_%s_%d", stem, n)
}

// DecodeEntry parses record data written by Import.
func DecodeEntry(data []byte) (core.Entry, error) {
	var e core.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return e, nil
}

func encodeEntry(e core.Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizeTags trims, drops empties and removes duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
