// Package pipeline runs extraction over a file or a directory of files.
//
// Input files are read and segmented up front on a worker pool. Chunks are
// then processed one at a time in sorted file order. Each chunk is either
// replayed from the resume journal, when a successful record with the same
// content hash exists, or extracted with up to MaxRetries attempts. Every
// attempted chunk appends exactly one record to the journal before the next
// chunk starts, so an interrupted run loses at most the chunk in flight.
//
// A file with any failed chunk is excluded from merging. A directory run
// with a failed file skips the final merge and reports the failed chunks.
package pipeline
