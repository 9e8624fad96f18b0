package sink

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrClosed indicates that the sink is closed.
	ErrClosed = errors.New("sink is closed")

	// ErrInvalidRecord indicates a record without a type or an id.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
