package segment

import "errors"

var (
	// ErrSegmentation is the parent of every segmentation error. Segmentation
	// errors are fatal and are raised before any model call is made.
	ErrSegmentation = errors.New("segmentation error")

	// ErrInvalidStrategy is returned for a strategy name other than fixed, chapters or auto.
	ErrInvalidStrategy = errors.New("invalid chunk strategy")

	// ErrInvalidChunkSize is returned when ChunkSize is <= 0
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap is returned when Overlap is negative
	ErrInvalidOverlap = errors.New("overlap cannot be negative")

	// ErrInvalidChapterMax is returned when ChapterMaxChars is <= 0
	ErrInvalidChapterMax = errors.New("chapter max chars must be greater than 0")
)
