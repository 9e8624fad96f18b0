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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/lorekeeper/core"
	"github.com/poiesic/lorekeeper/extraction"
	"github.com/poiesic/lorekeeper/journal"
	"github.com/poiesic/lorekeeper/segment"
)

// Controller drives a run: it segments the input, replays cached chunks
// from the journal, extracts the rest with retries and merges the results.
// Model calls are strictly sequential.
type Controller struct {
	extractor  *extraction.Extractor
	merger     *extraction.Merger
	journal    *journal.Journal
	index      *journal.Index
	segment    segment.Options
	maxRetries int
	retryDelay time.Duration
	recursive  bool
	poolSize   int
	progress   io.Writer
	modelName  string
	counter    TokenCounter
	logger     *slog.Logger
}

// Option is a functional option for configuring a Controller.
type Option func(*Controller) error

// WithSegmentOptions sets how input files are split.
func WithSegmentOptions(opts segment.Options) Option {
	return func(c *Controller) error {
		if err := opts.Validate(); err != nil {
			return err
		}
		c.segment = opts
		return nil
	}
}

// WithMaxRetries sets the maximum number of extraction attempts per chunk.
// Default: 3
func WithMaxRetries(n int) Option {
	return func(c *Controller) error {
		if n < 1 {
			return ErrInvalidMaxAttempts
		}
		c.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the wait after the first failed attempt. It doubles
// on each further attempt.
// Default: 0 (retry immediately)
func WithRetryDelay(d time.Duration) Option {
	return func(c *Controller) error {
		if d < 0 {
			return fmt.Errorf("retry delay must not be negative: %s", d)
		}
		c.retryDelay = d
		return nil
	}
}

// WithRecursive controls whether directory runs descend into subdirectories.
// Default: true
func WithRecursive(recursive bool) Option {
	return func(c *Controller) error {
		c.recursive = recursive
		return nil
	}
}

// WithPoolSize sets the number of workers reading and segmenting files.
// Default: runtime.NumCPU()
func WithPoolSize(size int) Option {
	return func(c *Controller) error {
		if size < 1 {
			return fmt.Errorf("pool size must be greater than 0: %d", size)
		}
		c.poolSize = size
		return nil
	}
}

// WithProgress writes a progress line to w while chunks are processed.
func WithProgress(w io.Writer) Option {
	return func(c *Controller) error {
		c.progress = w
		return nil
	}
}

// WithIndex sets the resume index. Without it the controller starts from
// an empty index.
func WithIndex(idx *journal.Index) Option {
	return func(c *Controller) error {
		c.index = idx
		return nil
	}
}

// WithTokenCounter sets the model name and token counter used by Estimate.
func WithTokenCounter(model string, counter TokenCounter) Option {
	return func(c *Controller) error {
		c.modelName = model
		c.counter = counter
		return nil
	}
}

// NewController creates a controller. The journal receives one record per
// attempted chunk.
func NewController(extractor *extraction.Extractor, merger *extraction.Merger, j *journal.Journal, opts ...Option) (*Controller, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if merger == nil {
		return nil, ErrMergerRequired
	}
	if j == nil {
		return nil, ErrJournalRequired
	}

	c := &Controller{
		extractor:  extractor,
		merger:     merger,
		journal:    j,
		segment:    segment.DefaultOptions(),
		maxRetries: 3,
		recursive:  true,
		poolSize:   runtime.NumCPU(),
		logger:     slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.index == nil {
		c.index = journal.NewIndex()
	}
	return c, nil
}

// Estimate resolves and segments the input and projects model usage
// without calling the model.
func (c *Controller) Estimate(ctx context.Context, path string) (*Estimate, error) {
	input, err := ResolveInput(path, c.recursive)
	if err != nil {
		return nil, err
	}
	docs, err := Prepare(ctx, input.Files, c.segment, c.poolSize)
	if err != nil {
		return nil, err
	}
	return EstimateUsage(docs, c.extractor.Options(), c.modelName, c.index, c.counter), nil
}

// Run processes the file or directory at path. A missing input yields a
// report with StatusInputNotFound and no error. Errors are reserved for
// fatal conditions: unreadable input, invalid segmentation, a journal
// write failure or cancellation.
func (c *Controller) Run(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	report := &Report{Input: path, RunID: c.journal.RunID()}
	defer func() { report.Elapsed = time.Since(start) }()

	input, err := ResolveInput(path, c.recursive)
	if errors.Is(err, ErrInputNotFound) {
		c.logger.Error("input not found", "path", path, "err", err)
		report.Status = StatusInputNotFound
		return report, nil
	}
	if err != nil {
		return report, err
	}

	docs, err := Prepare(ctx, input.Files, c.segment, c.poolSize)
	if err != nil {
		return report, err
	}

	total := ChunkCount(docs)
	c.logger.Info("starting run", "input", path, "files", len(docs), "chunks", total, "run_id", report.RunID)

	progress := NewProgressTracker(c.progress, total, 1)
	progress.Start()
	defer progress.Finish()

	var chunkResults []core.ExtractionResult
	for _, doc := range docs {
		file, results, err := c.processDocument(ctx, doc, progress)
		if err != nil {
			report.Files = append(report.Files, file)
			return report, err
		}

		if file.Succeeded() {
			if input.IsDir {
				file.Entries = c.merger.MergeLocal(results)
			} else {
				chunkResults = results
			}
		} else {
			c.logger.Warn("file failed", "path", doc.Path, "failed_chunks", len(file.Failures))
		}
		report.Files = append(report.Files, file)
	}

	if failed := report.FailedFiles(); len(failed) > 0 {
		report.Status = StatusPartialFailure
		for _, f := range report.Failures() {
			c.logger.Error("chunk failed", "source", f.Source, "chunk", f.ChunkIndex, "attempts", f.Attempts, "err", f.Error)
		}
		return report, nil
	}

	if input.IsDir {
		perFile := make([]core.ExtractionResult, 0, len(report.Files))
		for _, f := range report.Files {
			perFile = append(perFile, core.ExtractionResult{Success: true, Data: f.Entries, Source: f.Path})
		}
		report.Entries = c.merger.Merge(ctx, perFile)
	} else {
		report.Entries = c.merger.Merge(ctx, chunkResults)
		report.Files[0].Entries = report.Entries
	}
	report.Merged = true
	report.Status = StatusOK

	c.logger.Info("run complete", "entries", len(report.Entries), "elapsed", time.Since(start))
	return report, nil
}

// processDocument runs every chunk of doc in order. It returns an error
// only for conditions that abort the whole run.
func (c *Controller) processDocument(ctx context.Context, doc Document, progress *ProgressTracker) (FileResult, []core.ExtractionResult, error) {
	file := FileResult{
		Path:     doc.Path,
		Strategy: string(doc.Strategy),
		Chunks:   len(doc.Chunks),
	}
	results := make([]core.ExtractionResult, 0, len(doc.Chunks))

	c.logger.Debug("processing file", "path", doc.Path, "strategy", doc.Strategy, "chunks", len(doc.Chunks))

	for i, chunk := range doc.Chunks {
		if err := ctx.Err(); err != nil {
			return file, results, err
		}

		result, cacheHit, err := c.processChunk(ctx, doc.Path, i, len(doc.Chunks), chunk)
		if err != nil {
			return file, results, err
		}
		progress.Done(cacheHit)

		if cacheHit {
			file.CacheHits++
		} else {
			file.Attempted++
		}
		if !result.Success {
			attempts, _ := result.Metadata[core.MetaAttempts].(int)
			file.Failures = append(file.Failures, ChunkFailure{
				Source:     doc.Path,
				ChunkIndex: i,
				Attempts:   attempts,
				Error:      result.Err,
			})
		}
		results = append(results, result)
	}
	return file, results, nil
}

// processChunk replays a cached chunk or extracts it with retries and
// journals the outcome. The returned error is fatal to the run.
func (c *Controller) processChunk(ctx context.Context, source string, index, total int, text string) (core.ExtractionResult, bool, error) {
	hash := core.ChunkHash(text)

	if entries, ok := c.index.Lookup(source, index, hash); ok {
		result := core.ExtractionResult{
			Success: true,
			Data:    entries,
			Source:  core.SourceLabel(strings.TrimSpace(text)),
		}
		result.SetMeta(core.MetaChunkIndex, index)
		result.SetMeta(core.MetaTotalChunks, total)
		result.SetMeta(core.MetaCacheHit, true)
		c.logger.Debug("cache hit", "source", source, "chunk", index)
		return result, true, nil
	}

	var result core.ExtractionResult
	attempts, err := RetryWithBackoff(ctx, func(attempt int) error {
		c.logger.Debug("extracting chunk", "source", source, "chunk", index, "attempt", attempt)
		result = c.extractor.Extract(ctx, text)
		if !result.Success {
			return errors.New(result.Err)
		}
		return nil
	}, c.maxRetries, c.retryDelay)
	if attempts == 0 {
		return result, false, err
	}

	record := core.ChunkRecord{
		Source:     source,
		ChunkIndex: index,
		ChunkHash:  hash,
		Success:    err == nil,
		Attempts:   attempts,
	}
	if err == nil {
		record.Entries = result.Data
	} else {
		record.Error = err.Error()
		result.Success = false
		result.Err = err.Error()
		result.Data = nil
	}

	if err := c.journal.Append(record); err != nil {
		return result, false, err
	}
	c.index.Put(record)

	result.SetMeta(core.MetaChunkIndex, index)
	result.SetMeta(core.MetaTotalChunks, total)
	result.SetMeta(core.MetaAttempts, attempts)
	if !record.Success {
		c.logger.Warn("chunk failed", "source", source, "chunk", index, "attempts", attempts, "err", record.Error)
	}
	return result, false, nil
}
