package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DefaultPriority is assigned to entries whose priority is missing or unparseable.
const DefaultPriority = 10

// ChunkHash returns a hex-encoded BLAKE2b-256 fingerprint of chunk text.
// Identical text always produces the same hash; any edit changes it.
func ChunkHash(text string) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is a single structured knowledge unit extracted from text.
type Entry struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	Content  string `json:"content"`
	Comment  string `json:"comment"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// NewEntry creates an enabled entry with the default priority.
func NewEntry(name, key, content string) Entry {
	return Entry{
		Name:     name,
		Key:      key,
		Content:  content,
		Priority: DefaultPriority,
		Enabled:  true,
	}
}

// PrimaryKey returns the identity used to detect duplicate entries:
// the lower-cased name, or the lower-cased first key token if name is empty.
func (e Entry) PrimaryKey() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(FirstKeyToken(e.Key))
}

// Keys splits the comma-joined trigger terms, dropping empty tokens.
func (e Entry) Keys() []string {
	parts := strings.Split(e.Key, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// FirstKeyToken returns the trimmed first comma-separated token of key.
func FirstKeyToken(key string) string {
	first, _, _ := strings.Cut(key, ",")
	return strings.TrimSpace(first)
}

// ChunkRecord is the persisted outcome of one extraction attempt loop for a
// (source, chunk index) pair. Records are append-only; a later record for the
// same pair supersedes earlier ones.
type ChunkRecord struct {
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkHash  string    `json:"chunk_hash"`
	Entries    []Entry   `json:"entries"`
	Success    bool      `json:"success"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitzero"`
}

// ChunkKey identifies a chunk within a run: the source path and its 0-based index.
type ChunkKey struct {
	Source     string
	ChunkIndex int
}

// Key returns the record's identity.
func (r *ChunkRecord) Key() ChunkKey {
	return ChunkKey{Source: r.Source, ChunkIndex: r.ChunkIndex}
}

// Well-known ExtractionResult metadata keys.
const (
	MetaChunkIndex    = "chunk_index"
	MetaTotalChunks   = "total_chunks"
	MetaGleaningAdded = "gleaning_added"
	MetaGleaningError = "gleaning_error"
	MetaCacheHit      = "cache_hit"
	MetaAttempts      = "attempts"
)

// ExtractionResult is the transient outcome of one extraction call.
// Failures are reported through Success and Err rather than Go errors so
// that every outcome can be journaled.
type ExtractionResult struct {
	Success   bool
	Data      []Entry
	RawOutput string
	Err       string
	Source    string
	Metadata  map[string]any
}

// NewFailedResult builds a failed result carrying the error message.
func NewFailedResult(source string, err error) ExtractionResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ExtractionResult{
		Success:  false,
		Err:      msg,
		Source:   source,
		Metadata: map[string]any{},
	}
}

// SetMeta records an auxiliary value, allocating the metadata map on first use.
func (r *ExtractionResult) SetMeta(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata[key] = value
}

// SourceLabel returns a short provenance label for text: its first 100
// characters, followed by an ellipsis when truncated.
func SourceLabel(text string) string {
	runes := []rune(text)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return text
}
