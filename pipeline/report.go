package pipeline

import (
	"time"

	"github.com/poiesic/lorekeeper/core"
)

// ExitStatus is the overall outcome of a run.
type ExitStatus int

const (
	StatusOK ExitStatus = iota
	StatusPartialFailure
	StatusInputNotFound
)

// String returns the status name.
func (s ExitStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusPartialFailure:
		return "PARTIAL_FAILURE"
	case StatusInputNotFound:
		return "INPUT_NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the status onto a process exit code.
func (s ExitStatus) ExitCode() int {
	switch s {
	case StatusOK:
		return 0
	case StatusPartialFailure:
		return 1
	default:
		return 2
	}
}

// ChunkFailure names a chunk whose latest attempt failed.
type ChunkFailure struct {
	Source     string
	ChunkIndex int
	Attempts   int
	Error      string
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Path      string
	Strategy  string
	Chunks    int
	CacheHits int
	Attempted int
	Failures  []ChunkFailure
	Entries   []core.Entry
}

// Succeeded reports whether every chunk of the file succeeded.
func (f *FileResult) Succeeded() bool {
	return len(f.Failures) == 0
}

// Report summarizes a run.
type Report struct {
	Status   ExitStatus
	Input    string
	RunID    string
	Files    []FileResult
	Entries  []core.Entry
	Merged   bool
	Elapsed  time.Duration
	Estimate *Estimate
}

// Failures returns every failed (file, chunk) pair in run order.
func (r *Report) Failures() []ChunkFailure {
	var out []ChunkFailure
	for _, f := range r.Files {
		out = append(out, f.Failures...)
	}
	return out
}

// FailedFiles returns the paths of files with at least one failed chunk.
func (r *Report) FailedFiles() []string {
	var out []string
	for _, f := range r.Files {
		if !f.Succeeded() {
			out = append(out, f.Path)
		}
	}
	return out
}

// Totals returns chunk counts across all files.
func (r *Report) Totals() (chunks, cacheHits, attempted, failed int) {
	for _, f := range r.Files {
		chunks += f.Chunks
		cacheHits += f.CacheHits
		attempted += f.Attempted
		failed += len(f.Failures)
	}
	return chunks, cacheHits, attempted, failed
}
