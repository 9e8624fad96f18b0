package journal

import "errors"

var (
	// ErrPersistence indicates a record could not be made durable. The run
	// must stop: continuing would leave the resume log inconsistent.
	ErrPersistence = errors.New("journal persistence failure")

	// ErrClosed is returned by Append after Close.
	ErrClosed = errors.New("journal is closed")
)
