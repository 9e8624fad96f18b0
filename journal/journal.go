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


package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/poiesic/lorekeeper/core"
)

// Journal is an append-only log of chunk outcomes, one JSON object per line.
// Every Append is written and synced before it returns, so a record survives
// the process being killed immediately afterwards.
type Journal struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	runID  string
	now    func() time.Time
	logger *slog.Logger
}

// Option is a functional option for configuring a Journal.
type Option func(*Journal)

// WithRunID stamps every appended record with id.
func WithRunID(id string) Option {
	return func(j *Journal) {
		j.runID = id
	}
}

// WithClock overrides the time source used for RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// NewRunID returns a new time-ordered run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Open opens the journal at path for appending, creating the file and its
// parent directories if needed.
func Open(path string, opts ...Option) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create journal dir: %w", ErrPersistence, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open journal: %w", ErrPersistence, err)
	}
	torn, err := terminateLastLine(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: repair journal tail: %w", ErrPersistence, err)
	}

	j := &Journal{
		file:   file,
		path:   path,
		now:    time.Now,
		logger: slog.Default().With("component", "journal"),
	}
	for _, opt := range opts {
		opt(j)
	}
	if torn {
		j.logger.Warn("journal ended in a partial line; starting on a new line", "path", path)
	}
	j.logger.Debug("journal opened", "path", path, "run_id", j.runID)
	return j, nil
}

// terminateLastLine appends a newline when the file is non-empty and does
// not end in one, so the next record starts on its own line. It reports
// whether a newline was written.
func terminateLastLine(file *os.File) (bool, error) {
	info, err := file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	if last[0] == '\n' {
		return false, nil
	}

	if _, err := file.Write([]byte{'\n'}); err != nil {
		return false, err
	}
	return true, file.Sync()
}

// Append writes record as one line and syncs it to disk. Any failure is
// reported as ErrPersistence.
func (j *Journal) Append(record core.ChunkRecord) error {
	if err := core.ValidateChunkRecord(&record); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if record.RunID == "" {
		record.RunID = j.runID
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = j.now().UTC()
	}
	if record.Entries == nil {
		record.Entries = []core.Entry{}
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrPersistence, err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("%w: %w", ErrPersistence, ErrClosed)
	}
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("%w: write record: %w", ErrPersistence, err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync journal: %w", ErrPersistence, err)
	}

	j.logger.Debug("record appended",
		"source", record.Source,
		"chunk_index", record.ChunkIndex,
		"success", record.Success,
		"attempts", record.Attempts)
	return nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// RunID returns the identifier stamped on appended records.
func (j *Journal) RunID() string {
	return j.runID
}

// Close closes the underlying file. Further appends fail.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
