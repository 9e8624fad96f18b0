package lorekeeper

import "errors"

var (
	// ErrNoInput is returned when no input path is configured.
	ErrNoInput = errors.New("no input path")

	// ErrUnknownSink is returned for an import target that is not
	// badger:<dir> or sqlite:<file>.
	ErrUnknownSink = errors.New("unknown import target")
)
