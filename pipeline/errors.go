package pipeline

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrMergerRequired is returned when a merger is not provided.
	ErrMergerRequired = errors.New("merger required")

	// ErrJournalRequired is returned when a journal is not provided.
	ErrJournalRequired = errors.New("journal required")

	// ErrInputNotFound is returned when the input path does not exist or
	// contains no supported files.
	ErrInputNotFound = errors.New("input not found")

	// ErrReadInput is returned when an input file cannot be read. It aborts
	// the run before any model call.
	ErrReadInput = errors.New("cannot read input")
)
