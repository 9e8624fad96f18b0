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


package lorekeeper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/ai/langchain"
	"github.com/poiesic/lorekeeper/config"
	"github.com/poiesic/lorekeeper/export"
	"github.com/poiesic/lorekeeper/extraction"
	"github.com/poiesic/lorekeeper/journal"
	"github.com/poiesic/lorekeeper/pipeline"
	"github.com/poiesic/lorekeeper/sink"
	"github.com/poiesic/lorekeeper/sink/badger"
	"github.com/poiesic/lorekeeper/sink/sqlite"
)

// Options configures Run.
type Options struct {
	// Config holds the run settings. Config.Input is required.
	Config config.Config

	// Model overrides the model built from Config. Optional.
	Model ai.Model

	// Progress receives a progress line while chunks are processed. Optional.
	Progress io.Writer

	// Stream receives model output as it is generated. Optional.
	Stream ai.StreamFunc
}

// Report is the outcome of Run.
type Report struct {
	*pipeline.Report

	// Outputs lists the files written.
	Outputs []string

	// Imported is the number of entries saved to the import target.
	Imported int
}

// Run executes one extraction run: it segments the input, replays cached
// chunks from the resume log, extracts the rest, merges, and on full
// success writes outputs and imports entries. A missing input is reported
// through Report.Status rather than an error.
func Run(ctx context.Context, opts Options) (Report, error) {
	cfg := opts.Config
	logger := slog.Default().With("component", "lorekeeper")

	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if cfg.Input == "" {
		return Report{}, ErrNoInput
	}

	prompts, err := extraction.LoadPrompts(cfg.PromptsDir)
	if err != nil {
		return Report{}, err
	}
	extractOpts := []extraction.Option{
		extraction.WithPrompts(prompts),
		extraction.WithGleaning(cfg.Gleaning),
		extraction.WithLLMMerge(cfg.LLMMerge),
		extraction.WithPreserveOrder(cfg.PreserveOrder),
	}
	if opts.Stream != nil {
		extractOpts = append(extractOpts, extraction.WithStream(opts.Stream))
	}

	index, err := journal.LoadIndex(cfg.ResumeLog)
	if err != nil {
		return Report{}, err
	}
	if index.Skipped > 0 {
		logger.Warn("resume log has unreadable lines", "path", cfg.ResumeLog, "skipped", index.Skipped)
	}

	modelConfig := cfg.ModelConfig()
	if cfg.EstimateOnly {
		est, err := estimate(ctx, cfg, extraction.NewOptions(extractOpts...), modelConfig.Model, index)
		if isNotFound(err) {
			logger.Error("input not found", "path", cfg.Input, "err", err)
			return Report{Report: &pipeline.Report{Input: cfg.Input, Status: pipeline.StatusInputNotFound}}, nil
		}
		if err != nil {
			return Report{}, err
		}
		return Report{Report: &pipeline.Report{Input: cfg.Input, Status: pipeline.StatusOK, Estimate: est}}, nil
	}

	model := opts.Model
	if model == nil {
		model, err = langchain.NewModel(ctx, modelConfig)
		if err != nil {
			return Report{}, fmt.Errorf("create model: %w", err)
		}
	}

	j, err := journal.Open(cfg.ResumeLog)
	if err != nil {
		return Report{}, err
	}
	defer j.Close()

	controller, err := pipeline.NewController(
		extraction.NewExtractor(model, extractOpts...),
		extraction.NewMerger(model, extractOpts...),
		j,
		pipeline.WithSegmentOptions(cfg.SegmentOptions()),
		pipeline.WithMaxRetries(cfg.RetryMax),
		pipeline.WithRetryDelay(cfg.RetryDelay),
		pipeline.WithRecursive(cfg.Recursive),
		pipeline.WithIndex(index),
		pipeline.WithProgress(opts.Progress),
		pipeline.WithTokenCounter(modelConfig.Model, langchain.CountTokens),
	)
	if err != nil {
		return Report{}, err
	}

	var est *pipeline.Estimate
	if cfg.EstimateTokens {
		// Estimate against the index before the run fills it
		est, err = controller.Estimate(ctx, cfg.Input)
		if err != nil && !isNotFound(err) {
			return Report{}, err
		}
	}

	result, err := controller.Run(ctx, cfg.Input)
	report := Report{Report: result}
	if result != nil {
		result.Estimate = est
	}
	if err != nil || result.Status != pipeline.StatusOK {
		return report, err
	}

	for _, out := range []struct {
		path   string
		format export.Format
	}{
		{cfg.Output, export.FormatFromPath(cfg.Output)},
		{cfg.OutputJSONL, export.FormatJSONL},
		{cfg.OutputXLSX, export.FormatXLSX},
	} {
		if out.path == "" {
			continue
		}
		if err := export.SaveFile(out.path, out.format, result.Entries); err != nil {
			return report, err
		}
		report.Outputs = append(report.Outputs, out.path)
		logger.Info("wrote output", "path", out.path, "format", out.format, "entries", len(result.Entries))
	}

	if cfg.Import != "" {
		store, err := OpenSink(ctx, cfg.Import)
		if err != nil {
			return report, err
		}
		defer store.Close()

		report.Imported, err = sink.Import(ctx, store, result.Entries, cfg.Input, cfg.Tags)
		if err != nil {
			return report, fmt.Errorf("import: %w", err)
		}
	}

	return report, nil
}

func estimate(ctx context.Context, cfg config.Config, opts extraction.Options, model string, index *journal.Index) (*pipeline.Estimate, error) {
	input, err := pipeline.ResolveInput(cfg.Input, cfg.Recursive)
	if err != nil {
		return nil, err
	}
	docs, err := pipeline.Prepare(ctx, input.Files, cfg.SegmentOptions(), runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	return pipeline.EstimateUsage(docs, opts, model, index, langchain.CountTokens), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, pipeline.ErrInputNotFound)
}

// OpenSink opens an import target named badger:<dir> or sqlite:<file>.
func OpenSink(ctx context.Context, target string) (sink.Store, error) {
	kind, path, ok := strings.Cut(target, ":")
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, target)
	}
	switch strings.ToLower(kind) {
	case "badger":
		return badger.Open(path)
	case "sqlite":
		return sqlite.Open(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, target)
	}
}
