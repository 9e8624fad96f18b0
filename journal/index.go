package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/poiesic/lorekeeper/core"
)

// Index is the resume state rebuilt from a journal: the latest record for
// every (source, chunk index) pair.
type Index struct {
	records map[core.ChunkKey]core.ChunkRecord
	order   []core.ChunkKey

	// Lines is the number of non-blank lines read.
	Lines int

	// Skipped is the number of lines that could not be decoded.
	Skipped int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{records: make(map[core.ChunkKey]core.ChunkRecord)}
}

// LoadIndex reads the journal at path. A missing file yields an empty index.
// Lines that are not valid records are skipped and counted; for repeated
// keys the last line wins. A read error other than a missing file is
// returned, since a partial index would repeat work already paid for.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	idx, err := readIndex(f)
	if err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}

	slog.Default().With("component", "journal").Debug("journal loaded",
		"path", path, "records", idx.Len(), "skipped", idx.Skipped)
	return idx, nil
}

// readIndex decodes records from r. The final line may lack a newline.
func readIndex(r io.Reader) (*Index, error) {
	idx := NewIndex()
	logger := slog.Default().With("component", "journal")
	br := bufio.NewReader(r)

	for n := 1; ; n++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			idx.Lines++
			var record core.ChunkRecord
			if jerr := json.Unmarshal(trimmed, &record); jerr != nil || record.Source == "" || record.ChunkIndex < 0 {
				idx.Skipped++
				logger.Debug("skipping unreadable journal line", "line", n)
			} else {
				idx.Put(record)
			}
		}

		if err != nil {
			return idx, nil
		}
	}
}

// Put records r as the latest state of its key.
func (ix *Index) Put(r core.ChunkRecord) {
	key := r.Key()
	if _, exists := ix.records[key]; !exists {
		ix.order = append(ix.order, key)
	}
	ix.records[key] = r
}

// Get returns the latest record for a chunk.
func (ix *Index) Get(source string, chunkIndex int) (core.ChunkRecord, bool) {
	r, ok := ix.records[core.ChunkKey{Source: source, ChunkIndex: chunkIndex}]
	return r, ok
}

// Lookup returns the stored entries for a chunk when the stored record
// succeeded and its hash equals hash. Anything else is a cache miss.
func (ix *Index) Lookup(source string, chunkIndex int, hash string) ([]core.Entry, bool) {
	r, ok := ix.Get(source, chunkIndex)
	if !ok || !r.Success || r.ChunkHash != hash {
		return nil, false
	}
	entries := slices.Clone(r.Entries)
	if entries == nil {
		entries = []core.Entry{}
	}
	return entries, true
}

// Len returns the number of distinct chunks in the index.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Records returns the latest record of every chunk, in first-seen order.
func (ix *Index) Records() []core.ChunkRecord {
	out := make([]core.ChunkRecord, 0, len(ix.order))
	for _, k := range ix.order {
		out = append(out, ix.records[k])
	}
	return out
}

// Failed returns the chunks whose latest record is a failure.
func (ix *Index) Failed() []core.ChunkRecord {
	var out []core.ChunkRecord
	for _, r := range ix.Records() {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Stats summarizes an index.
type Stats struct {
	Lines     int
	Records   int
	Succeeded int
	Failed    int
	Skipped   int
	Entries   int
}

// Stats returns counts over the latest records.
func (ix *Index) Stats() Stats {
	s := Stats{Lines: ix.Lines, Records: ix.Len(), Skipped: ix.Skipped}
	for _, r := range ix.records {
		if r.Success {
			s.Succeeded++
			s.Entries += len(r.Entries)
		} else {
			s.Failed++
		}
	}
	return s
}
