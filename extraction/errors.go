package extraction

import "errors"

var (
	// ErrUnparseable is returned when no JSON value can be recovered from model output.
	ErrUnparseable = errors.New("no JSON found in model output")

	// ErrNotArray is returned when the recovered JSON value is not an array.
	ErrNotArray = errors.New("model output is not a JSON array")

	// ErrEmptyMerge is returned when a model-assisted merge drops every entry.
	ErrEmptyMerge = errors.New("model merge returned no entries")
)
