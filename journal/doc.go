// Package journal implements the resumable log of chunk outcomes.
//
// Each line of a journal file is one JSON-encoded core.ChunkRecord:
//
//	{"source":"book/ch1.md","chunk_index":0,"chunk_hash":"9f2c...","entries":[...],"success":true,"attempts":1}
//
// Journal.Append writes and fsyncs one line per call. LoadIndex rebuilds the
// latest state of every (source, chunk index) pair; unreadable lines, such
// as a line torn by a crash, are skipped rather than failing the load.
//
// A chunk is a cache hit only when its latest record succeeded and was
// produced from text with the same hash. Changing a chunk's text therefore
// re-extracts that chunk alone.
package journal
