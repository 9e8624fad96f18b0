package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/core"
)

// Merger combines the entries of many extraction results into one
// deduplicated set.
type Merger struct {
	model  ai.Model
	opts   Options
	logger *slog.Logger
}

// NewMerger creates a merger. model may be nil when LLMMerge is disabled.
func NewMerger(model ai.Model, opts ...Option) *Merger {
	return &Merger{
		model:  model,
		opts:   NewOptions(opts...),
		logger: slog.Default().With("component", "merger"),
	}
}

// Merge concatenates the entries of successful results in order. When
// model-assisted merging is enabled and there is more than one result with
// at least one entry, the model reconciles the list; any failure of that
// call falls back to local deduplication.
func (m *Merger) Merge(ctx context.Context, results []core.ExtractionResult) []core.Entry {
	entries := Collect(results)

	if m.opts.LLMMerge && m.model != nil && len(results) > 1 && len(entries) > 0 {
		merged, err := m.mergeWithModel(ctx, entries)
		if err == nil {
			m.logger.Debug("model merge complete", "in", len(entries), "out", len(merged))
			return Finalize(merged, m.opts.PreserveOrder)
		}
		m.logger.Warn("model merge failed, using local dedup", "err", err)
	}

	return Finalize(entries, m.opts.PreserveOrder)
}

// MergeLocal merges without calling the model, whatever the options say.
func (m *Merger) MergeLocal(results []core.ExtractionResult) []core.Entry {
	return Finalize(Collect(results), m.opts.PreserveOrder)
}

func (m *Merger) mergeWithModel(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	payload, err := marshalEntries(entries)
	if err != nil {
		return nil, err
	}

	out, err := m.model.Invoke(ctx, []ai.Message{
		ai.System(m.opts.Prompts.Merge),
		ai.User(mergeUserPreamble + payload),
	}, m.opts.invokeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	merged, err := ParseEntries(out)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, ErrEmptyMerge
	}
	return merged, nil
}

// Collect concatenates the entries of successful results in input order.
func Collect(results []core.ExtractionResult) []core.Entry {
	var entries []core.Entry
	for _, r := range results {
		if r.Success {
			entries = append(entries, r.Data...)
		}
	}
	return entries
}

func marshalEntries(entries []core.Entry) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("encode entries: %w", err)
	}
	return buf.String(), nil
}
