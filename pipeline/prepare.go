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
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lorekeeper/segment"
)

// Document is an input file read and split into chunks.
type Document struct {
	Path     string
	Strategy segment.Strategy
	Runes    int
	Chunks   []string
}

// LoadDocument reads path and segments it.
func LoadDocument(path string, opts segment.Options) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	if err := opts.Validate(); err != nil {
		return Document{}, err
	}
	strategy, _ := segment.ParseStrategy(string(opts.Strategy))
	if strategy == segment.StrategyAuto {
		strategy = segment.Resolve(text, opts.MinHeadings)
	}

	chunks, err := segment.Segment(text, opts)
	if err != nil {
		return Document{}, fmt.Errorf("segment %s: %w", path, err)
	}

	return Document{
		Path:     path,
		Strategy: strategy,
		Runes:    utf8.RuneCountInString(text),
		Chunks:   chunks,
	}, nil
}

// Prepare reads and segments files on a worker pool. Documents come back in
// the order of files. The first error in that order is returned.
func Prepare(ctx context.Context, files []string, opts segment.Options, poolSize int) ([]Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	docs := make([]Document, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			docs[i], errs[i] = LoadDocument(path, opts)
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("failed to submit task: %w", err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// ChunkCount returns the number of chunks across docs.
func ChunkCount(docs []Document) int {
	n := 0
	for _, d := range docs {
		n += len(d.Chunks)
	}
	return n
}
