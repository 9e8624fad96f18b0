// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/core"
)

// Extractor turns one chunk of text into lore entries using a model.
type Extractor struct {
	model  ai.Model
	opts   Options
	logger *slog.Logger
}

// NewExtractor creates an extractor backed by model.
func NewExtractor(model ai.Model, opts ...Option) *Extractor {
	return &Extractor{
		model:  model,
		opts:   NewOptions(opts...),
		logger: slog.Default().With("component", "extractor"),
	}
}

// Options returns the resolved options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract runs the primary pass, the optional gleaning pass and
// post-processing on chunk. It never returns an error: every failure,
// including a panic while parsing, is reported as a failed result.
func (e *Extractor) Extract(ctx context.Context, chunk string) (result core.ExtractionResult) {
	text := strings.TrimSpace(chunk)
	source := core.SourceLabel(text)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", "panic", r)
			result = core.NewFailedResult(source, fmt.Errorf("extraction panicked: %v", r))
		}
	}()

	// Blank chunks hold nothing to extract
	if text == "" {
		return core.ExtractionResult{Success: true, Data: []core.Entry{}, Source: source, Metadata: map[string]any{}}
	}

	messages := e.messages(text)
	raw, err := e.model.Invoke(ctx, messages, e.opts.invokeOptions()...)
	if err != nil {
		e.logger.Warn("model call failed", "err", err)
		return core.NewFailedResult(source, fmt.Errorf("invoke model: %w", err))
	}

	entries, err := ParseEntries(raw)
	if err != nil {
		e.logger.Warn("error parsing extraction response", "err", err)
		failed := core.NewFailedResult(source, err)
		failed.RawOutput = raw
		return failed
	}

	result = core.ExtractionResult{
		Success:   true,
		RawOutput: raw,
		Source:    source,
		Metadata:  map[string]any{},
	}

	if e.opts.Gleaning {
		gleaned, err := e.glean(ctx, messages, raw, text)
		if err != nil {
			e.logger.Debug("gleaning failed", "err", err)
			result.SetMeta(core.MetaGleaningError, err.Error())
		} else if len(gleaned) > 0 {
			entries = MergeGleaned(entries, gleaned)
			result.SetMeta(core.MetaGleaningAdded, len(gleaned))
		}
	}

	result.Data = Finalize(entries, e.opts.PreserveOrder)
	e.logger.Debug("extracted entries", "count", len(result.Data))
	return result
}

// messages builds the primary two-message conversation.
func (e *Extractor) messages(text string) []ai.Message {
	return []ai.Message{
		ai.System(e.opts.Prompts.System),
		ai.User(render(e.opts.Prompts.User, text)),
	}
}

// glean replays the primary exchange and asks for omissions.
func (e *Extractor) glean(ctx context.Context, primary []ai.Message, raw, text string) ([]core.Entry, error) {
	messages := append(append([]ai.Message(nil), primary...),
		ai.Assistant(raw),
		ai.User(render(e.opts.Prompts.Gleaning, text)),
	)

	out, err := e.model.Invoke(ctx, messages, e.opts.invokeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}
	return ParseEntries(out)
}
